package dashboard

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrMalformedEvent is returned for payloads that cannot be mapped to an Event.
var ErrMalformedEvent = eris.New("dashboard: malformed event")

// Event is one user interaction. The set of variants is closed:
// OverviewClicked, DetailHovered and Initial.
type Event interface {
	kind() string
}

// OverviewClicked fires when a bar of the overview chart is clicked. An
// empty Location means the click carried no point.
type OverviewClicked struct {
	Location string
}

// DetailHovered fires when the pointer enters or leaves a detail bar. An
// empty Pollutant means the pointer left the chart.
type DetailHovered struct {
	FigureID  string
	Pollutant string
}

// Initial fires when the page first renders, optionally with the id of a
// detail figure it already knows about.
type Initial struct {
	FigureID string
}

func (OverviewClicked) kind() string { return "overview_clicked" }
func (DetailHovered) kind() string   { return "detail_hovered" }
func (Initial) kind() string         { return "initial" }

// Kind returns the metric label of ev.
func Kind(ev Event) string {
	if ev == nil {
		return "unknown"
	}
	return ev.kind()
}

// Wire event types.
const (
	TypeOverviewClick = "overview_click"
	TypeDetailHover   = "detail_hover"
	TypeInitial       = "initial"
)

// Payload is the JSON body the page posts. Points mirrors Plotly's event
// data; only the x value of the first point is used.
type Payload struct {
	Type     string  `json:"type"`
	FigureID string  `json:"figure_id,omitempty"`
	Points   []Point `json:"points,omitempty"`
}

// Point is one entry of Plotly's event points.
type Point struct {
	X json.RawMessage `json:"x"`
}

// ParseEvent decodes a posted payload.
func ParseEvent(data []byte) (Event, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrapf(ErrMalformedEvent, "decode: %v", err)
	}
	return p.Event()
}

// Event maps the payload onto its Event variant.
func (p Payload) Event() (Event, error) {
	x, err := p.firstX()
	if err != nil {
		return nil, err
	}

	switch p.Type {
	case TypeOverviewClick:
		return OverviewClicked{Location: x}, nil
	case TypeDetailHover:
		if p.FigureID == "" {
			return nil, eris.Wrap(ErrMalformedEvent, "detail hover without figure_id")
		}
		return DetailHovered{FigureID: p.FigureID, Pollutant: x}, nil
	case TypeInitial:
		return Initial{FigureID: p.FigureID}, nil
	case "":
		return nil, eris.Wrap(ErrMalformedEvent, "missing type")
	default:
		return nil, eris.Wrapf(ErrMalformedEvent, "unknown type %q", p.Type)
	}
}

// firstX returns the category of the first point, or "" when there is none.
func (p Payload) firstX() (string, error) {
	if len(p.Points) == 0 || len(p.Points[0].X) == 0 || string(p.Points[0].X) == "null" {
		return "", nil
	}
	var x string
	if err := json.Unmarshal(p.Points[0].X, &x); err != nil {
		return "", eris.Wrap(ErrMalformedEvent, "point x is not a category")
	}
	return strings.TrimSpace(x), nil
}
