package filter

import (
	"context"
	"testing"

	"github.com/mozhi-it/LAN-Transfer/internal/errors"
	"github.com/mozhi-it/LAN-Transfer/internal/testutil"
	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

var listing = []types.FileRecord{
	{Name: "a.png", Size: "10 B", Category: types.CategoryImages},
	{Name: "b.jpg", Size: "2 KB", Category: types.CategoryImages},
	{Name: "notes.txt", Size: "1 KB", Category: types.CategoryDocuments},
}

func TestPipelineRun(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		query  string
		want   string
	}{
		{name: "names", query: "[].name", want: "[\n  \"a.png\",\n  \"b.jpg\",\n  \"notes.txt\"\n]"},
		{name: "filter then query", filter: "[?category=='documents']", query: "[0].name", want: `"notes.txt"`},
		{name: "filter only", filter: "[?size=='10 B'].name", want: "[\n  \"a.png\"\n]"},
		{name: "missing field", query: "nothing", want: "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.filter, tt.query)
			testutil.AssertNoError(t, err)
			got, err := p.Run(context.Background(), listing)
			testutil.AssertNoError(t, err)
			testutil.AssertField(t, "result", got, tt.want)
		})
	}
}

func TestCompileRejectsBadExpressions(t *testing.T) {
	for _, expr := range [][2]string{{"[?", ""}, {"", "files["}} {
		_, err := Compile(expr[0], expr[1])
		testutil.AssertError(t, err)

		var e *errors.Error
		if !errors.As(err, &e) || e.Kind != errors.KindValidation {
			t.Errorf("Compile(%q, %q) = %v, want a validation error", expr[0], expr[1], err)
		}
	}
}

func TestShellQuery(t *testing.T) {
	p, err := Compile("[?category=='images']", "$(grep -c name)")
	testutil.AssertNoError(t, err)

	got, err := p.Run(context.Background(), listing)
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "matching lines", got, "2")

	p, err = Compile("", "$(exit 3)")
	testutil.AssertNoError(t, err)
	_, err = p.Run(context.Background(), listing)
	testutil.AssertError(t, err)
}

func TestEmpty(t *testing.T) {
	p, err := Compile("", "")
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "empty", p.Empty(), true)

	p, err = Compile("", "$(cat)")
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "shell", p.Empty(), false)
}

func TestMatchNames(t *testing.T) {
	files := []types.FileRecord{{Name: "Report.PDF"}, {Name: "notes.txt"}, {Name: "report-v2.pdf"}}

	got, err := MatchNames(files, "report*.pdf")
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "matches", len(got), 2)
	testutil.AssertField(t, "first", got[0].Name, "Report.PDF")

	all, err := MatchNames(files, "")
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "empty pattern", len(all), 3)

	_, err = MatchNames(files, "[")
	testutil.AssertError(t, err)
}
