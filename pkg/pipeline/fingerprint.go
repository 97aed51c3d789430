package pipeline

import (
	"encoding/json"
	"strconv"

	"github.com/matzehuels/tavola/pkg/cache"
	"github.com/matzehuels/tavola/pkg/catalog"
)

type itemPrint struct {
	Name    string           `json:"n"`
	W       int              `json:"w"`
	H       int              `json:"h"`
	ModTime int64            `json:"t,omitempty"`
	Meta    catalog.Metadata `json:"m,omitempty"`
}

// Fingerprint hashes what placement depends on in the loaded items: names,
// pixel sizes, file times and metadata rows. Pixels are not read.
func Fingerprint(items []catalog.Item) string {
	prints := make([]itemPrint, len(items))
	for i, it := range items {
		prints[i] = itemPrint{Name: it.Name, W: it.Width(), H: it.Height(), Meta: it.Meta}
		if !it.ModTime.IsZero() {
			prints[i].ModTime = it.ModTime.UnixNano()
		}
	}
	data, _ := json.Marshal(prints)
	return cache.Hash(data)
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
func formatInt(n int) string       { return strconv.Itoa(n) }
func formatBool(b bool) string     { return strconv.FormatBool(b) }
