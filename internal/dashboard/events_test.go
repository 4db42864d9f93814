package dashboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Event
	}{
		{
			name: "overview click",
			body: `{"type":"overview_click","points":[{"x":"Bronx","y":9.1}]}`,
			want: OverviewClicked{Location: "Bronx"},
		},
		{
			name: "overview click outside a bar",
			body: `{"type":"overview_click"}`,
			want: OverviewClicked{},
		},
		{
			name: "overview click with null x",
			body: `{"type":"overview_click","points":[{"x":null}]}`,
			want: OverviewClicked{},
		},
		{
			name: "detail hover",
			body: `{"type":"detail_hover","figure_id":"f1","points":[{"x":" Ozone (O3) "}]}`,
			want: DetailHovered{FigureID: "f1", Pollutant: "Ozone (O3)"},
		},
		{
			name: "detail unhover",
			body: `{"type":"detail_hover","figure_id":"f1","points":[]}`,
			want: DetailHovered{FigureID: "f1"},
		},
		{
			name: "initial without figure",
			body: `{"type":"initial"}`,
			want: Initial{},
		},
		{
			name: "initial with figure",
			body: `{"type":"initial","figure_id":"f2"}`,
			want: Initial{FigureID: "f2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEvent([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEvent_Malformed(t *testing.T) {
	bodies := map[string]string{
		"not json":           `{"type":`,
		"array":              `[1,2]`,
		"missing type":       `{"points":[{"x":"Bronx"}]}`,
		"unknown type":       `{"type":"double_click"}`,
		"numeric x":          `{"type":"overview_click","points":[{"x":3}]}`,
		"hover without id":   `{"type":"detail_hover","points":[{"x":"Ozone (O3)"}]}`,
		"points wrong shape": `{"type":"overview_click","points":{"x":"Bronx"}}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			ev, err := ParseEvent([]byte(body))
			require.Error(t, err)
			assert.Nil(t, ev)
			assert.True(t, errors.Is(err, ErrMalformedEvent), "got %v", err)
		})
	}
}

func TestKind(t *testing.T) {
	assert.Equal(t, "overview_clicked", Kind(OverviewClicked{}))
	assert.Equal(t, "detail_hovered", Kind(DetailHovered{}))
	assert.Equal(t, "initial", Kind(Initial{}))
	assert.Equal(t, "unknown", Kind(nil))
}
