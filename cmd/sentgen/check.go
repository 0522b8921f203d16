package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ava12/sentgen/grammar"
)

type symbolInfo struct {
	Name     string   `json:"name"`
	External bool     `json:"external,omitempty"`
	MinDepth int      `json:"minDepth"`
	Rules    []string `json:"rules,omitempty"`
}

type grammarInfo struct {
	Root    string       `json:"root"`
	Symbols []symbolInfo `json:"symbols"`
}

func (a *app) checkCmd() *cobra.Command {
	var withRules, asJSON bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compile the grammar and list its symbols",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, e := a.loadGrammar()
			if e != nil {
				return e
			}

			info := describe(g, withRules)
			var content []byte
			if asJSON {
				content, e = makeJSON(info)
				if e != nil {
					return e
				}
			} else {
				content = makeText(info)
			}
			_, e = a.stdout.Write(content)
			return e
		},
	}

	cmd.Flags().BoolVar(&withRules, "rules", false, "list rules of every symbol")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output JSON instead of text")
	return cmd
}

func describe(g *grammar.Grammar, withRules bool) grammarInfo {
	info := grammarInfo{Root: g.Root().Name}
	for _, s := range g.Symbols() {
		si := symbolInfo{Name: s.Name, External: s.External, MinDepth: s.MinDepth}
		if withRules {
			for _, r := range s.Rules {
				si.Rules = append(si.Rules, r.String())
			}
		}
		info.Symbols = append(info.Symbols, si)
	}
	return info
}

func makeJSON(info grammarInfo) ([]byte, error) {
	content, e := json.MarshalIndent(info, "", "  ")
	if e != nil {
		return nil, e
	}
	return append(content, '\n'), nil
}

func makeText(info grammarInfo) []byte {
	var buffer bytes.Buffer
	buffer.WriteString("root: " + info.Root + "\n")
	for _, s := range info.Symbols {
		buffer.WriteString(fmt.Sprintf("%s\t%d", s.Name, s.MinDepth))
		if s.External {
			buffer.WriteString("\texternal")
		}
		buffer.WriteString("\n")
		for _, r := range s.Rules {
			buffer.WriteString("\t" + r + "\n")
		}
	}
	return buffer.Bytes()
}
