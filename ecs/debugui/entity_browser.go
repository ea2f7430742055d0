package debugui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tessera/ecs"
)

// EntityRow is one line of the entity browser.
type EntityRow struct {
	ID         ecs.EntityId
	Index      uint32
	Generation uint32
	Components []string
}

// Columns of the entity browser table.
const (
	ColumnID = iota
	ColumnGeneration
	ColumnComponents
	ColumnCount
)

// EntityBrowser lists the scene's entities with the components they have.
type EntityBrowser struct {
	selected   ecs.EntityId
	filterText string
	perPage    int
	page       int

	sortColumn    int
	sortAscending bool

	rows      []EntityRow
	signature [2]int
}

func NewEntityBrowser(perPage int) *EntityBrowser {
	return &EntityBrowser{
		selected:      ecs.NoEntity,
		perPage:       perPage,
		sortAscending: true,
		signature:     [2]int{-1, -1},
	}
}

// Selected returns the selected entity, or NoEntity.
func (eb *EntityBrowser) Selected() ecs.EntityId {
	return eb.selected
}

func (eb *EntityBrowser) Select(id ecs.EntityId) {
	eb.selected = id
}

// SetFilter restricts the rows to those whose id or component names contain text.
func (eb *EntityBrowser) SetFilter(text string) {
	eb.filterText = text
	eb.page = 0
}

// SortBy orders the rows by column.
func (eb *EntityBrowser) SortBy(column int, ascending bool) {
	eb.sortColumn, eb.sortAscending = column, ascending
	sortEntityRows(eb.rows, column, ascending)
}

// Rows returns the filtered, sorted rows for scene, rebuilding them when the
// scene's entity or component counts changed since the last call.
func (eb *EntityBrowser) Rows(scene *ecs.Scene) []EntityRow {
	if sig := sceneSignature(scene); sig != eb.signature {
		eb.rows = EntityRows(scene)
		sortEntityRows(eb.rows, eb.sortColumn, eb.sortAscending)
		eb.signature = sig
	}
	if !scene.EntityExists(eb.selected) {
		eb.selected = ecs.NoEntity
	}
	return filterEntityRows(eb.rows, eb.filterText)
}

func sceneSignature(scene *ecs.Scene) [2]int {
	components := 0
	for _, store := range scene.Stores() {
		components += store.Len()
	}
	return [2]int{scene.EntityCount(), components}
}

// EntityRows builds a row for every live entity of scene.
func EntityRows(scene *ecs.Scene) []EntityRow {
	stores := scene.Stores()
	rows := make([]EntityRow, 0, scene.EntityCount())
	for id := range scene.AllEntities() {
		row := EntityRow{ID: id, Index: id.Index(), Generation: id.Generation()}
		for _, store := range stores {
			if store.IsPresentOn(id) {
				row.Components = append(row.Components, store.Name())
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func sortEntityRows(rows []EntityRow, column int, ascending bool) {
	slices.SortStableFunc(rows, func(a, b EntityRow) int {
		var c int
		switch column {
		case ColumnGeneration:
			c = int(a.Generation) - int(b.Generation)
		case ColumnComponents:
			c = strings.Compare(strings.Join(a.Components, ","), strings.Join(b.Components, ","))
		case ColumnCount:
			c = len(a.Components) - len(b.Components)
		}
		if c == 0 {
			c = int(a.Index) - int(b.Index)
		}
		if !ascending {
			return -c
		}
		return c
	})
}

func filterEntityRows(rows []EntityRow, text string) []EntityRow {
	if text == "" {
		return rows
	}

	needle := strings.ToLower(text)
	filtered := make([]EntityRow, 0, len(rows))
	for _, row := range rows {
		if strings.Contains(fmt.Sprint(row.Index), needle) ||
			strings.Contains(strings.ToLower(strings.Join(row.Components, " ")), needle) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

func (eb *EntityBrowser) Render(scene *ecs.Scene, _ float64) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	filter := eb.filterText
	imgui.InputTextWithHint("##search", "Search...", &filter, imgui.InputTextFlagsNone, nil)
	if filter != eb.filterText {
		eb.SetFilter(filter)
	}
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.SetFilter("")
	}

	rows := eb.Rows(scene)
	start := min(eb.page*eb.perPage, len(rows))
	end := min(start+eb.perPage, len(rows))

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity")
		imgui.TableSetupColumn("Generation")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.SortBy(int(spec.ColumnIndex()), spec.SortDirection() == imgui.SortDirectionAscending)
			sortSpecs.SetSpecsDirty(false)
		}

		for _, row := range rows[start:end] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			if imgui.SelectableBoolV(fmt.Sprintf("%d", row.Index), eb.selected == row.ID, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selected = row.ID
			}
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.Generation))
			imgui.TableNextColumn()
			imgui.Text(strings.Join(row.Components, ", "))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", len(row.Components)))
		}

		imgui.EndTable()
	}

	if len(rows) > eb.perPage {
		pages := (len(rows) + eb.perPage - 1) / eb.perPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.page+1, pages, len(rows)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.page > 0 {
			eb.page--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.page < pages-1 {
			eb.page++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(rows)))
	}

	imgui.End()
}
