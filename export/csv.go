// Package export turns accumulated records into the CSV table users download
// and reads URL lists for batch input.
package export

import (
	"bufio"
	"io"
	"strings"

	"github.com/use-agent/tubemeta/models"
)

// Filename is the suggested download name for the exported table.
const Filename = "youtube-analysis.csv"

// bom makes spreadsheet applications detect UTF-8.
const bom = "\ufeff"

// Header is the fixed column order of the exported table.
var Header = []string{
	"link",
	"title",
	"channel",
	"subscriber count",
	"view count",
	"like count",
	"comment count",
	"publish date",
}

// WriteCSV writes records as a BOM-prefixed table. Every data field is
// quoted; rows are separated by "\n" with no trailing newline.
func WriteCSV(w io.Writer, records []models.VideoRecord) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(bom)
	bw.WriteString(strings.Join(Header, ","))

	for _, r := range records {
		bw.WriteByte('\n')
		fields := [...]string{
			r.URL,
			r.Title,
			r.ChannelName,
			r.SubscriberCount,
			r.ViewCount,
			r.LikeCount,
			r.CommentCount,
			r.PublishDate,
		}
		for i, f := range fields {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(quote(f))
		}
	}
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
