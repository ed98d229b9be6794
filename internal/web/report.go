package web

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/credport/internal/core"
)

const reportStyle = `body{font-family:sans-serif;margin:2rem;color:#222}
table{border-collapse:collapse;margin-bottom:1.5rem}
th,td{border:1px solid #ccc;padding:.3rem .6rem;text-align:left}
th{background:#f4f4f4}
.err{color:#a40000}
.warn{color:#8a5a00}`

// ImportReport renders a finished import as a standalone HTML page.
// Secrets and one-time password keys are never written.
func ImportReport(res *core.ImportResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		e := templ.EscapeString

		b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>Import ")
		b.WriteString(e(res.Reference))
		b.WriteString("</title><style>")
		b.WriteString(reportStyle)
		b.WriteString("</style></head><body>")

		fmt.Fprintf(&b, "<h1>Import %s</h1>", e(res.Reference))
		fmt.Fprintf(&b, "<p>Format <strong>%s</strong>, state <strong>%s</strong>, %d rows in %d ms.</p>",
			e(res.Format), e(string(res.State)), res.RowsAttempted, res.Duration.Milliseconds())
		fmt.Fprintf(&b, "<p>%d imported, <span class=\"err\">%d failed</span>, %d folders, %d folder errors, <span class=\"warn\">%d warnings</span>.</p>",
			res.Imported(), res.Failed(), len(res.Folders), len(res.FolderErrors), len(res.Warnings))

		if len(res.Resources) > 0 {
			b.WriteString("<h2>Resources</h2><table><tr><th>Name</th><th>Username</th><th>Folder</th><th>Type</th><th>TOTP</th></tr>")
			for _, r := range res.Resources {
				totp := "no"
				if r.TOTP != nil {
					totp = "yes"
				}
				fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
					e(r.Name), e(deref(r.Username)), e(r.FolderParentPath), e(deref(r.ResourceTypeID)), totp)
			}
			b.WriteString("</table>")
		}

		if len(res.ResourceErrors) > 0 {
			b.WriteString("<h2>Rejected rows</h2><table><tr><th>Line</th><th>Error</th><th>Code</th></tr>")
			for _, re := range res.ResourceErrors {
				fmt.Fprintf(&b, "<tr class=\"err\"><td>%d</td><td>%s</td><td>%s</td></tr>",
					re.Line, e(re.Err.Error()), e(core.MapError(re.Err).Code))
			}
			b.WriteString("</table>")
		}

		if len(res.FolderErrors) > 0 {
			b.WriteString("<h2>Rejected folders</h2><table><tr><th>Path</th><th>Error</th></tr>")
			for _, fe := range res.FolderErrors {
				fmt.Fprintf(&b, "<tr class=\"err\"><td>%s</td><td>%s</td></tr>", e(fe.Path), e(fe.Err.Error()))
			}
			b.WriteString("</table>")
		}

		if len(res.Warnings) > 0 {
			b.WriteString("<h2>Warnings</h2><table><tr><th>Line</th><th>Kind</th><th>Message</th></tr>")
			for _, wn := range res.Warnings {
				fmt.Fprintf(&b, "<tr class=\"warn\"><td>%d</td><td>%s</td><td>%s</td></tr>",
					wn.Line, e(string(wn.Kind)), e(wn.Message))
			}
			b.WriteString("</table>")
		}

		b.WriteString("</body></html>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func logRenderError(r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "render error", "path", r.URL.Path, "error", err)
}
