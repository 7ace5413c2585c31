package layout

import (
	"encoding/json"
	"os"
)

type pageSummary struct {
	Page     int `json:"page"`
	Texts    int `json:"texts"`
	Lines    int `json:"lines"`
	Images   int `json:"images"`
	Layers   int `json:"layers"`
	Warnings int `json:"warnings"`
}

// debugDump 在完整结果之外附加每页的指令统计。
type debugDump struct {
	*Result
	Summary []pageSummary `json:"summary"`
}

func summarize(res *Result) []pageSummary {
	out := make([]pageSummary, 0, len(res.Pages))
	for _, p := range res.Pages {
		s := pageSummary{Page: p.Number, Layers: len(p.Layers), Warnings: len(p.Warnings)}
		for _, op := range p.Ops() {
			switch {
			case op.Text != nil:
				s.Texts++
			case op.Line != nil:
				s.Lines++
			case op.Image != nil:
				s.Images++
			}
		}
		out = append(out, s)
	}
	return out
}

// WriteDebugJSON 将布局结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := json.MarshalIndent(debugDump{Result: res, Summary: summarize(res)}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
