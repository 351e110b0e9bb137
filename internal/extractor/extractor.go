// Package extractor parses Verilog source into a ModuleInfo record.
//
// Extraction is regex-driven and intentionally shallow: it reads
// declarations, it does not elaborate. Only the first module in a file
// is considered; syntax.Check reports the presence of additional
// modules as an informational diagnostic.
package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/awavelab/wavecore/internal/syntax"
)

// Parameter is a module parameter with its raw, unevaluated value text.
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Port is a module port. Width is derived from the declared range;
// scalar ports have Width 1 and Msb == Lsb == 0.
type Port struct {
	Name  string `json:"name"`
	Width int    `json:"width"`
	Msb   int    `json:"msb"`
	Lsb   int    `json:"lsb"`
}

// Signal is an internal wire or reg declaration.
type Signal struct {
	Name  string `json:"name"`
	Width int    `json:"width"`
}

// ModuleInfo holds everything extracted from one module declaration.
// All lists preserve source order and contain no duplicate names. A
// ModuleInfo with an empty Name means no module was found; callers
// that require a module must refuse to proceed, Extract itself does
// not treat absence as an error.
type ModuleInfo struct {
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters,omitempty"`
	Inputs     []Port      `json:"inputs,omitempty"`
	Outputs    []Port      `json:"outputs,omitempty"`
	Inouts     []Port      `json:"inouts,omitempty"`
	Wires      []Signal    `json:"wires,omitempty"`
	Regs       []Signal    `json:"regs,omitempty"`
}

// Ports returns inputs, outputs and inouts, in that category order,
// each preserving declaration order.
func (m *ModuleInfo) Ports() []Port {
	ports := make([]Port, 0, len(m.Inputs)+len(m.Outputs)+len(m.Inouts))
	ports = append(ports, m.Inputs...)
	ports = append(ports, m.Outputs...)
	ports = append(ports, m.Inouts...)
	return ports
}

// Extract parses Verilog source and returns the module metadata.
// Each step matches independently over comment-stripped text. The
// precedence rules are explicit ordered checks: first occurrence of a
// name wins within a category, and port classification wins over
// internal wire/reg classification.
func Extract(source string) ModuleInfo {
	info := ModuleInfo{}
	code := syntax.StripComments(source)

	if m := moduleNamePattern.FindStringSubmatch(code); m != nil {
		info.Name = m[1]
	}

	for _, m := range paramPattern.FindAllStringSubmatch(code, -1) {
		info.Parameters = append(info.Parameters, Parameter{
			Name:  m[1],
			Value: strings.TrimSpace(m[2]),
		})
	}

	info.Inputs = matchPorts(inputPattern, code)
	info.Outputs = matchPorts(outputPattern, code)
	info.Inouts = matchPorts(inoutPattern, code)

	for _, m := range wirePattern.FindAllStringSubmatch(code, -1) {
		name := m[3]
		if info.isPort(name) || hasSignal(info.Wires, name) {
			continue
		}
		_, _, width := rangeBounds(m[1], m[2])
		info.Wires = append(info.Wires, Signal{Name: name, Width: width})
	}

	for _, m := range regPattern.FindAllStringSubmatch(code, -1) {
		name := m[3]
		if info.isPort(name) || hasSignal(info.Regs, name) {
			continue
		}
		_, _, width := rangeBounds(m[1], m[2])
		info.Regs = append(info.Regs, Signal{Name: name, Width: width})
	}

	return info
}

func matchPorts(pattern *regexp.Regexp, code string) []Port {
	var ports []Port
	for _, m := range pattern.FindAllStringSubmatch(code, -1) {
		name := m[3]
		if hasPort(ports, name) {
			continue
		}
		msb, lsb, width := rangeBounds(m[1], m[2])
		ports = append(ports, Port{Name: name, Width: width, Msb: msb, Lsb: lsb})
	}
	return ports
}

// rangeBounds turns captured [msb:lsb] digits into bounds and a width.
// Both captures empty means a scalar declaration.
func rangeBounds(msbText, lsbText string) (msb, lsb, width int) {
	if msbText == "" || lsbText == "" {
		return 0, 0, 1
	}
	msb, _ = strconv.Atoi(msbText)
	lsb, _ = strconv.Atoi(lsbText)
	return msb, lsb, msb - lsb + 1
}

func (m *ModuleInfo) isPort(name string) bool {
	return hasPort(m.Inputs, name) || hasPort(m.Outputs, name) || hasPort(m.Inouts, name)
}

func hasPort(ports []Port, name string) bool {
	for _, p := range ports {
		if p.Name == name {
			return true
		}
	}
	return false
}

func hasSignal(signals []Signal, name string) bool {
	for _, s := range signals {
		if s.Name == name {
			return true
		}
	}
	return false
}
