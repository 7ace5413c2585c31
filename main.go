package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
	canvasrenderer "github.com/ByLCY/folio/renderer/canvas"
)

func main() {
	input := flag.String("in", "examples/demo.folio", "markup 文件路径")
	output := flag.String("out", "output/demo.pdf", "输出文件路径")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到 markup 的 JSON 数据")
	dataFile := flag.String("data-file", "", "绑定到 markup 的 JSON 数据文件")
	maxPages := flag.Int("max-pages", 0, "最大页数，0 表示不限制")
	format := flag.String("format", "pdf", "输出格式：pdf 或 json（记录写入器调用，便于调试）")
	flag.Parse()

	raw := []byte(*dataJSON)
	if *dataFile != "" {
		var err error
		if raw, err = os.ReadFile(*dataFile); err != nil {
			log.Fatalf("读取 data 文件失败: %v", err)
		}
	}
	var inputData any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &inputData); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	var r renderer.Renderer
	switch *format {
	case "pdf":
		r = canvasrenderer.NewRenderer(canvasrenderer.Options{})
	case "json":
		r = recorderRenderer{}
	default:
		log.Fatalf("未知的输出格式 %s", *format)
	}
	opts := layout.BuildOptions{BaseDir: filepath.Dir(*input), MaxPages: *maxPages}
	if err := run(*input, *output, *debug, inputData, opts, r); err != nil {
		log.Fatalf("生成文档失败: %v", err)
	}
	fmt.Printf("已生成：%s\n", *output)
}

// recorderRenderer 输出 renderer.Recorder 的 JSON。
type recorderRenderer struct{}

func (recorderRenderer) Render(result *layout.Result) ([]byte, error) {
	return renderer.Render(result, renderer.NewRecorder())
}

// run 串联解析、构建、排版与输出。
func run(inputPath, outputPath, debugPath string, data any, opts layout.BuildOptions, r renderer.Renderer) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	doc, err := dsl.ParseFile(inputPath)
	if err != nil {
		return fmt.Errorf("解析 markup 失败: %w", err)
	}

	built, err := layout.Build(doc, data, opts)
	if err != nil {
		return fmt.Errorf("构建文档失败: %w", err)
	}
	result, err := built.Render()
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}

	if debugPath != "" {
		if err := writeDebug(result, debugPath); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}

	out, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
