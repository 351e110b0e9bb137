package extractor

import "regexp"

var (
	// Pattern: module <name>
	moduleNamePattern = regexp.MustCompile(`\bmodule\s+(\w+)`)

	// Pattern: parameter [<range>] <name> = <expr> up to the next , or ;
	paramPattern = regexp.MustCompile(`\bparameter\s+(?:\[.*?\]\s+)?(\w+)\s*=\s*([^;,]+)`)

	// Pattern: input [wire] [<msb>:<lsb>] <name> terminated by , ; or )
	inputPattern = regexp.MustCompile(`\binput\s+(?:wire\s+)?(?:\[(\d+):(\d+)\]\s*)?(\w+)\s*[,;)]`)

	// Pattern: output [reg|wire] [<msb>:<lsb>] <name>
	outputPattern = regexp.MustCompile(`\boutput\s+(?:reg\s+|wire\s+)?(?:\[(\d+):(\d+)\]\s*)?(\w+)\s*[,;)]`)

	// Pattern: inout [<msb>:<lsb>] <name>
	inoutPattern = regexp.MustCompile(`\binout\s+(?:\[(\d+):(\d+)\]\s*)?(\w+)\s*[,;)]`)

	// Internal declarations terminate with , or ; only, so port-list
	// occurrences of "input wire x)" do not double-match here.
	wirePattern = regexp.MustCompile(`\bwire\s+(?:\[(\d+):(\d+)\]\s*)?(\w+)\s*[,;]`)
	regPattern  = regexp.MustCompile(`\breg\s+(?:\[(\d+):(\d+)\]\s*)?(\w+)\s*[,;]`)
)
