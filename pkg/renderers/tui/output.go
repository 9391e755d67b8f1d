package tui

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formkit/pkg/widgets"
)

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			flatten(next, val, out)
		}
	case []string:
		for _, val := range v {
			out.Add(prefix+"[]", val)
		}
	case []widgets.File:
		for _, f := range v {
			out.Add(prefix+"[]", f.Name)
		}
	case []any:
		for _, val := range v {
			out.Add(prefix+"[]", fmt.Sprint(val))
		}
	case nil:
		out.Set(prefix, "")
	case float64:
		out.Set(prefix, formatNumber(v))
	default:
		out.Set(prefix, fmt.Sprint(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			writePretty(b, next, v[key])
		}
	case []string:
		fmt.Fprintf(b, "%s=%s\n", prefix, strings.Join(v, ", "))
	case []widgets.File:
		names := make([]string, 0, len(v))
		for _, f := range v {
			names = append(names, fmt.Sprintf("%s (%s, %d bytes)", f.Name, f.ContentType, f.Size))
		}
		fmt.Fprintf(b, "%s=%s\n", prefix, strings.Join(names, ", "))
	case nil:
		fmt.Fprintf(b, "%s=\n", prefix)
	case float64:
		fmt.Fprintf(b, "%s=%s\n", prefix, formatNumber(v))
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%v\n", prefix, v)
		}
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
