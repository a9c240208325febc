package fetch

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/incidentph/hazardfeed/app/config"
)

// FallbackAdapters builds the adapter chain declared in a source's YAML
// config. HTML fallbacks are wrapped in readability extraction so downstream
// line parsers see plain text regardless of which candidate won.
func FallbackAdapters(refs []config.FallbackRef, slug string, client *http.Client, timeout time.Duration, userAgent string, clock clockwork.Clock) []Adapter {
	adapters := make([]Adapter, 0, len(refs))

	for i, ref := range refs {
		kind := KindText
		switch ref.Kind {
		case "html":
			kind = KindHTML
		case "json":
			kind = KindJSON
		}

		name := fmt.Sprintf("%s:fallback%d", slug, i+1)

		var adapter Adapter = NewHTTPAdapter(name, ref.URL, kind, client, timeout, userAgent, clock)
		if kind == KindHTML {
			adapter = NewReadabilityAdapter(adapter)
		}
		adapters = append(adapters, adapter)
	}

	return adapters
}
