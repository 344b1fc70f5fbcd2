package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// WriteCSV writes a header row followed by data rows.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Download streams a CSV attachment named <entity>-<date>.csv.
func Download(c *gin.Context, entity string, header []string, rows [][]string) {
	filename := fmt.Sprintf("%s-%s.csv", entity, time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)
	if err := WriteCSV(c.Writer, header, rows); err != nil {
		// Headers are already sent; log-and-abort is all that is left.
		c.Error(err) //nolint:errcheck
	}
}
