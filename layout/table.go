package layout

import (
	"fmt"
	"math"
)

// Cell 标识表格中的一个单元格，Border 非空时覆盖表格的边框线型。
type Cell struct {
	Column, Row int
	HasMore     bool
	Border      *LineStyle
}

// CellDecorator 为单元格绘制边框或底纹。
type CellDecorator interface {
	// SetTableSize 在表格开始渲染时调用一次。
	SetTableSize(columns, rows int)
	// PrepareCell 在渲染单元格内容前调用，可以收缩 area 为边框留出空间。
	PrepareCell(cell Cell, area *Area)
	// DecorateCell 在整行渲染后调用，返回该单元格实际占用的高度。
	DecorateCell(cell Cell, area *Area, rowHeight float64) float64
}

// TableCell 是表格中的一格内容。
type TableCell struct {
	Element Element
	Border  *LineStyle
}

// Table 按列宽排列单元格。列宽可以是权重（按比例分配容器宽度）或固定毫米数。
// 每一行的高度取该行所有单元格高度的最大值；某行未排完时，下一页从该行继续。
type Table struct {
	weights   []float64
	widths    []float64
	rows      [][]TableCell
	decorator CellDecorator

	index   int
	done    []bool // 当前行中已经排完的单元格
	started bool
}

// NewTable 创建按权重分配列宽的表格。
func NewTable(weights ...float64) *Table {
	return &Table{weights: weights}
}

// NewFixedTable 创建使用固定列宽（mm）的表格。
func NewFixedTable(widths ...float64) *Table {
	return &Table{widths: widths}
}

func (t *Table) Columns() int {
	if t.widths != nil {
		return len(t.widths)
	}
	return len(t.weights)
}

func (t *Table) Rows() int { return len(t.rows) }

// SetDecorator 设置单元格装饰器。
func (t *Table) SetDecorator(d CellDecorator) *Table {
	t.decorator = d
	return t
}

// PushRow 追加一行，单元格数量必须与列数一致。
func (t *Table) PushRow(elements ...Element) error {
	cells := make([]TableCell, len(elements))
	for i, e := range elements {
		cells[i] = TableCell{Element: e}
	}
	return t.PushCells(cells...)
}

// PushCells 追加一行，可以为单个单元格指定边框线型。
func (t *Table) PushCells(cells ...TableCell) error {
	if len(cells) != t.Columns() {
		return fmt.Errorf("表格有 %d 列，但该行有 %d 个单元格", t.Columns(), len(cells))
	}
	t.rows = append(t.rows, cells)
	return nil
}

func (t *Table) Reset() {
	t.index = 0
	t.done = nil
	t.started = false
	for _, row := range t.rows {
		for _, c := range row {
			reset(c.Element)
		}
	}
}

func (t *Table) split(area *Area) []*Area {
	if t.widths != nil {
		return area.SplitColumns(t.widths)
	}
	return area.SplitHorizontally(t.weights)
}

func (t *Table) Render(ctx *Context, area *Area, style Style) (RenderResult, error) {
	if !t.started {
		if t.decorator != nil {
			t.decorator.SetTableSize(t.Columns(), len(t.rows))
		}
		t.started = true
	}
	result := RenderResult{Size: Size{Width: area.Width()}}
	for t.index < len(t.rows) && area.Height() > epsilon {
		r, err := t.renderRow(ctx, area.Clone(), style)
		if err != nil {
			return RenderResult{}, err
		}
		result.Size.Height += r.Size.Height
		area.AddOffset(Position{Y: r.Size.Height})
		if r.HasMore {
			break
		}
	}
	result.HasMore = t.index < len(t.rows)
	return result, nil
}

func (t *Table) renderRow(ctx *Context, area *Area, style Style) (RenderResult, error) {
	var result RenderResult
	row := t.rows[t.index]
	if len(t.done) != len(row) {
		t.done = make([]bool, len(row))
	}
	areas := t.split(area)
	cells := make([]Cell, len(row))
	rowHeight := 0.0
	for i, c := range row {
		cells[i] = Cell{Column: i, Row: t.index, Border: c.Border}
		cellArea := areas[i].Clone()
		if t.decorator != nil {
			t.decorator.PrepareCell(cells[i], cellArea)
		}
		if t.done[i] {
			// 续排时已完成的单元格只保留边框
			continue
		}
		r, err := c.Element.Render(ctx, cellArea, style)
		if err != nil {
			return RenderResult{}, err
		}
		t.done[i] = !r.HasMore
		result.HasMore = result.HasMore || r.HasMore
		rowHeight = math.Max(rowHeight, r.Size.Height)
	}
	result.Size = Size{Width: area.Width(), Height: rowHeight}
	if result.HasMore && rowHeight <= epsilon {
		// 这一行在本页一点都放不下
		return result, nil
	}
	if t.decorator != nil {
		for i := range row {
			cells[i].HasMore = result.HasMore
			h := t.decorator.DecorateCell(cells[i], areas[i], rowHeight)
			result.Size.Height = math.Max(result.Size.Height, h)
		}
	}
	if !result.HasMore {
		t.index++
		t.done = nil
		ctx.Advance()
	}
	return result, nil
}

// FrameCellDecorator 用线条画出单元格边框：Inner 为内部网格线，Outer 为外框，
// Continuation 控制跨页断开处是否补线。
type FrameCellDecorator struct {
	Inner, Outer, Continuation bool
	Line                       LineStyle

	columns, rows int
	lastRow       int
}

// NewFrameCellDecorator 创建使用默认线型的边框装饰器。
func NewFrameCellDecorator(inner, outer, cont bool) *FrameCellDecorator {
	return &FrameCellDecorator{Inner: inner, Outer: outer, Continuation: cont, Line: DefaultLineStyle(), lastRow: -1}
}

func (d *FrameCellDecorator) SetTableSize(columns, rows int) {
	d.columns, d.rows = columns, rows
	d.lastRow = -1
}

func (d *FrameCellDecorator) line(c Cell) LineStyle {
	if c.Border != nil {
		return *c.Border
	}
	return d.Line
}

func (d *FrameCellDecorator) printLeft(column int) bool {
	if column == 0 {
		return d.Outer
	}
	return d.Inner
}

func (d *FrameCellDecorator) printRight(column int) bool {
	return column+1 == d.columns && d.Outer
}

// 同一行在上一页已经画过时，本页顶部是续排的断开处。
func (d *FrameCellDecorator) printTop(row int) bool {
	if row > d.lastRow {
		if row == 0 {
			return d.Outer
		}
		return d.Inner
	}
	return d.Continuation
}

func (d *FrameCellDecorator) printBottom(row int, hasMore bool) bool {
	if hasMore {
		return d.Continuation
	}
	return row+1 == d.rows && d.Outer
}

func (d *FrameCellDecorator) PrepareCell(c Cell, area *Area) {
	t := d.line(c).Thickness
	var m Margins
	if d.printTop(c.Row) {
		m.Top = t
	}
	if d.printRight(c.Column) {
		m.Right = t
	}
	if d.printBottom(c.Row, false) {
		m.Bottom = t
	}
	if d.printLeft(c.Column) {
		m.Left = t
	}
	area.AddMargins(m)
}

func (d *FrameCellDecorator) DecorateCell(c Cell, area *Area, rowHeight float64) float64 {
	ls := d.line(c)
	top, bottom := d.printTop(c.Row), d.printBottom(c.Row, c.HasMore)
	half := ls.Thickness / 2
	right := area.Width()

	total := rowHeight
	if top {
		total += ls.Thickness
	}
	if bottom {
		total += ls.Thickness
	}
	// 续排处的底边没有预留空间，内容占满区域时压在内容上
	total = math.Min(total, area.Height())
	if top {
		area.DrawLine([]Position{{X: 0, Y: half}, {X: right, Y: half}}, ls)
	}
	if d.printRight(c.Column) {
		area.DrawLine([]Position{{X: right - half, Y: 0}, {X: right - half, Y: total}}, ls)
	}
	if bottom {
		area.DrawLine([]Position{{X: 0, Y: total - half}, {X: right, Y: total - half}}, ls)
	}
	if d.printLeft(c.Column) {
		area.DrawLine([]Position{{X: half, Y: 0}, {X: half, Y: total}}, ls)
	}
	if c.Column+1 == d.columns {
		d.lastRow = c.Row
	}
	return total
}
