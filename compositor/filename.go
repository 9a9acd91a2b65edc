package compositor

import (
	"fmt"
	"strings"
	"time"
)

// OutputFileName strips one ".pdf" suffix, in any case, and appends ".pdf".
// An empty name becomes export_<unix millis>.pdf.
func OutputFileName(name string, now time.Time) string {
	name = strings.TrimSpace(name)
	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name = name[:len(name)-len(".pdf")]
	}
	if name == "" {
		return fmt.Sprintf("export_%d.pdf", now.UnixMilli())
	}
	return name + ".pdf"
}
