package source

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/HamStudy/vtable/internal/components/table"
)

var (
	genRegions  = []string{"us-east", "us-west", "eu-central", "ap-south"}
	genStatuses = []string{"running", "pending", "stopped", "failed"}
)

// Generated produces Count synthetic records, deterministic for a given Seed.
// Fields: id, name, region, status, cpu (0..1), memory (bytes), healthy.
type Generated struct {
	Count int
	Seed  int64
}

// Describe names the source
func (g *Generated) Describe() string {
	return fmt.Sprintf("%d generated records", g.Count)
}

// Load builds the records
func (g *Generated) Load(ctx context.Context) ([]table.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(g.Seed))
	records := make([]table.Record, g.Count)
	for i := range records {
		status := genStatuses[rng.Intn(len(genStatuses))]
		records[i] = table.Record{
			"id":      fmt.Sprintf("r%06d", i),
			"name":    fmt.Sprintf("server-%d", i),
			"region":  genRegions[i%len(genRegions)],
			"status":  status,
			"cpu":     float64(rng.Intn(1000)) / 1000,
			"memory":  int64(rng.Intn(64)+1) * 1024 * 1024 * 128,
			"healthy": status == "running",
		}
	}
	return records, nil
}

// GeneratedColumns returns columns for the generated fields
func GeneratedColumns() []table.Column[table.Record] {
	return []table.Column[table.Record]{
		{DataIndex: "id", Title: "ID", Width: table.Px(8)},
		{DataIndex: "name", Title: "Name"},
		{DataIndex: "region", Title: "Region", Width: table.Size("12ch")},
		{DataIndex: "status", Title: "Status", Width: table.Px(9)},
		{DataIndex: "cpu", Title: "CPU", Width: table.Px(6), ContentTextAlign: table.AlignEnd,
			Render: func(v any, _ table.Record, _ int) string {
				f, ok := v.(float64)
				if !ok {
					return ""
				}
				return fmt.Sprintf("%.0f%%", f*100)
			}},
		{DataIndex: "memory", Title: "Memory", Width: table.Px(8), ContentTextAlign: table.AlignEnd,
			Render: func(v any, _ table.Record, _ int) string {
				n, _ := v.(int64)
				return FormatMemory(n)
			}},
		{DataIndex: "healthy", Title: "OK", Width: table.Px(3), HeaderTextAlign: table.AlignCenter, ContentTextAlign: table.AlignCenter,
			Render: func(v any, _ table.Record, _ int) string {
				if v == true {
					return "✓"
				}
				return "✗"
			}},
	}
}
