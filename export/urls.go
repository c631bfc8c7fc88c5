package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var videoURLRE = regexp.MustCompile(`^https?://(www\.)?(youtube\.com/watch\?v=|youtu\.be/)`)

// IsVideoURL reports whether s looks like a single-video link.
func IsVideoURL(s string) bool {
	return videoURLRE.MatchString(s)
}

// FilterVideoURLs splits text into lines, trims them and keeps only those
// that look like video links, in input order.
func FilterVideoURLs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && IsVideoURL(line) {
			out = append(out, line)
		}
	}
	return out
}

// KeepVideoURLs applies FilterVideoURLs to an already split list.
func KeepVideoURLs(urls []string) []string {
	return FilterVideoURLs(strings.Join(urls, "\n"))
}

// ReadURLs reads URLs from a CSV file (header with a "url" column) or from
// a text file with one URL or {"url": "..."} object per line.
func ReadURLs(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	default:
		return readLines(path)
	}
}

func readCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv")
	}

	col := -1
	for i, h := range rows[0] {
		h = strings.TrimPrefix(h, bom)
		if strings.EqualFold(strings.TrimSpace(h), "url") || strings.EqualFold(strings.TrimSpace(h), "link") {
			col = i
			break
		}
	}
	if col == -1 {
		return nil, errors.New("csv must contain a 'url' or 'link' header column")
	}

	var out []string
	for _, row := range rows[1:] {
		if col < len(row) {
			if u := strings.TrimSpace(row[col]); u != "" {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "{") {
			var obj struct {
				URL string `json:"url"`
			}
			if err := json.Unmarshal([]byte(line), &obj); err == nil && obj.URL != "" {
				out = append(out, obj.URL)
				continue
			}
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no urls found in " + path)
	}
	return out, nil
}
