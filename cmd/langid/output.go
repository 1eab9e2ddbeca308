package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/cognicore/langid/pkg/langid/rank"
)

// printer renders detection results as plain text or JSON lines
type printer struct {
	w     io.Writer
	json  bool
	color bool
}

func (p *printer) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (p *printer) best(lang string) error {
	if p.json {
		return json.NewEncoder(p.w).Encode(struct {
			Lang string `json:"lang"`
		}{lang})
	}
	_, err := p.paint(color.FgGreen, color.Bold).Fprintln(p.w, lang)
	return err
}

func (p *printer) ranked(langs []rank.Language) error {
	if p.json {
		if langs == nil {
			langs = []rank.Language{}
		}
		return json.NewEncoder(p.w).Encode(struct {
			Langs []rank.Language `json:"langs"`
		}{langs})
	}
	if len(langs) == 0 {
		_, err := p.paint(color.FgYellow).Fprintln(p.w, "no candidate")
		return err
	}
	name := p.paint(color.FgGreen, color.Bold)
	for i, l := range langs {
		if i > 0 {
			name = p.paint(color.FgCyan)
		}
		if _, err := fmt.Fprintf(p.w, "%s %.5f\n", name.Sprintf("%-6s", l.Lang), l.Prob); err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) failure(err error) {
	if p.json {
		_ = json.NewEncoder(p.w).Encode(struct {
			Error string `json:"error"`
		}{err.Error()})
		return
	}
	p.paint(color.FgRed).Fprintln(p.w, "Error:", err)
}
