package format

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/lemon-mint/jsonformer/value"
)

var leafColor = color.New(color.FgGreen)

// Highlight pretty-prints v with every leaf value colored. Keys are printed
// bare, strings quoted.
func Highlight(w io.Writer, v value.Value) error {
	bw := bufio.NewWriter(w)
	highlight(bw, v, 0, true)
	return bw.Flush()
}

func highlight(w *bufio.Writer, v value.Value, indent int, last bool) {
	tail := "\n"
	if !last {
		tail = ",\n"
	}

	switch t := v.(type) {
	case *value.Object:
		w.WriteString("{\n")
		keys := t.Keys()
		for i, k := range keys {
			child, _ := t.Get(k)
			w.WriteString(strings.Repeat(" ", indent+2))
			w.WriteString(k)
			w.WriteString(": ")
			highlight(w, child, indent+2, i == len(keys)-1)
		}
		w.WriteString(strings.Repeat(" ", indent))
		w.WriteString("}" + tail)
	case *value.Array:
		w.WriteString("[\n")
		for i, child := range t.Items {
			w.WriteString(strings.Repeat(" ", indent+2))
			highlight(w, child, indent+2, i == len(t.Items)-1)
		}
		w.WriteString(strings.Repeat(" ", indent))
		w.WriteString("]" + tail)
	default:
		w.WriteString(leafColor.Sprint(leafText(v)))
		w.WriteString(tail)
	}
}

func leafText(v value.Value) string {
	switch t := v.(type) {
	case value.String:
		return `"` + string(t) + `"`
	case value.Number:
		return strconv.FormatFloat(float64(t), 'f', -1, 64)
	case value.Bool:
		return strconv.FormatBool(bool(t))
	}
	return "null"
}
