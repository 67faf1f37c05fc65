package ingest

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/akepally/ScholarRAG/internal/adapter/utils"
	"github.com/akepally/ScholarRAG/internal/domain/paper"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

var (
	logger     *logging.Logger
	loggerOnce sync.Once
)

// rawPage is one extracted page before pages are folded into a single
// paper body.
type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

type fileFormat string

const (
	formatPDF     fileFormat = "pdf"
	formatText    fileFormat = "text"
	formatUnknown fileFormat = "unknown"
)

// PaperFromFile extracts the text of an uploaded document and shapes
// it into a catalog paper. The paper id is derived from the file name
// so re-uploading the same document upserts instead of duplicating.
func PaperFromFile(path string, originalName string) (paper.Paper, error) {
	loggerOnce.Do(func() { logger = logging.NewLogger("ingest") })

	format := getFileFormat(originalName)
	if format == formatUnknown {
		return paper.Paper{}, fmt.Errorf("unsupported file type: %s", filepath.Ext(originalName))
	}

	pages, err := extractText(path, format)
	if err != nil {
		return paper.Paper{}, fmt.Errorf("extracting %s: %w", originalName, err)
	}
	body := joinPages(pages)
	if strings.TrimSpace(body) == "" {
		return paper.Paper{}, fmt.Errorf("no text extracted from %s", originalName)
	}

	stem := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	id := slugify(stem)
	if id == "" {
		id = utils.GetNewUUID()
	}
	return paper.Paper{
		Id:       "upload-" + id,
		DocType:  "uploaded",
		Title:    stem,
		Abstract: body,
		Metadata: map[string]any{
			"filename": originalName,
			"pages":    len(pages),
		},
		IngestedAt: time.Now().UTC(),
	}, nil
}

// Supported reports whether the file name carries an extension the
// extractor can handle. Handlers use it to reject uploads before
// parking them on disk.
func Supported(name string) bool {
	return getFileFormat(name) != formatUnknown
}

func getFileFormat(name string) fileFormat {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return formatPDF
	case ".docx", ".odt", ".txt", ".rtf":
		return formatText
	default:
		return formatUnknown
	}
}

func extractText(path string, format fileFormat) ([]rawPage, error) {
	switch format {
	case formatPDF:
		return extractPDF(path)
	case formatText:
		return extractTextLike(path)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func joinPages(pages []rawPage) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if strings.TrimSpace(p.Content) != "" {
			parts = append(parts, p.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// slugify keeps derived paper ids filesystem and URL safe.
func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
