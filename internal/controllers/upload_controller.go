package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pwa_mapview/internal/apperrors"
	"pwa_mapview/internal/config"
	"pwa_mapview/internal/ingest"
	"pwa_mapview/internal/tabular"
)

var xlsxMagic = []byte("PK\x03\x04")

// UploadRoutes ingests a branch's route batch. Three payload shapes are
// accepted: a multipart file upload (CSV in the legacy Thai code page by
// default, or an XLSX workbook), a JSON body ({data, branchId} or a bare
// array), or raw text that is tried as JSON first and parsed as CSV when
// that fails.
func UploadRoutes(c *gin.Context) {
	var (
		rows     []tabular.Row
		branchID int
	)

	switch {
	case strings.HasPrefix(c.ContentType(), "multipart/form-data"):
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
			return
		}
		branchID = atoi(c.PostForm("branchId"))

		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not open uploaded file"})
			return
		}
		raw, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
			return
		}

		if isXLSX(fileHeader.Filename, raw) {
			rows, err = tabular.DecodeXLSX(raw)
		} else {
			encoding := c.DefaultPostForm("encoding", tabular.EncodingWindows874)
			rows, err = tabular.Decode(raw, encoding)
		}
		if err != nil {
			logrus.WithError(err).Warn("upload: decode failed")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not decode file: " + err.Error()})
			return
		}

	case strings.HasPrefix(c.ContentType(), "application/json"):
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read request body"})
			return
		}
		rows, branchID, err = parseJSONPayload(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
			return
		}

	default:
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read request body"})
			return
		}
		if rows, branchID, err = parseJSONPayload(raw); err != nil {
			if rows, err = tabular.Decode(raw, tabular.EncodingUTF8); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Could not parse payload: " + err.Error()})
				return
			}
		}
	}

	if branchID == 0 {
		branchID = atoi(c.Query("branchId"))
	}

	report, err := ingest.Run(config.DB, branchID, rows)
	if err != nil {
		respondError(c, err, "Upload failed")
		return
	}

	// A batch with isolated row failures still succeeds, but the caller
	// gets told it was partial.
	status := "success"
	if len(report.Errors) > 0 {
		status = string(apperrors.CodePartialBatch)
	}

	resp := gin.H{
		"status":   status,
		"inserted": report.Inserted,
		"skipped":  report.Skipped,
		"deleted":  report.Deleted,
		"total":    report.Total,
		"branchId": branchID,
		"message":  summarize(report),
	}
	if len(report.Errors) > 0 {
		shown := report.Errors
		if len(shown) > ingest.MaxReportedErrors {
			shown = shown[:ingest.MaxReportedErrors]
		}
		resp["errors"] = shown
	}
	c.JSON(http.StatusOK, resp)
}

func summarize(r ingest.Report) string {
	msg := fmt.Sprintf("Replaced %d old records, imported %d new", r.Deleted, r.Inserted)
	if r.Skipped > 0 {
		msg += fmt.Sprintf(", skipped %d without a route code", r.Skipped)
	}
	if len(r.Errors) > 0 {
		msg += fmt.Sprintf(", %d rows failed", len(r.Errors))
	}
	return msg
}

// parseJSONPayload accepts {data: [...], branchId} or a bare record
// array. Cell values may arrive as JSON numbers; they are stringified the
// way the tabular decoder would have produced them.
func parseJSONPayload(raw []byte) ([]tabular.Row, int, error) {
	var body struct {
		Data     []map[string]any `json:"data"`
		BranchID json.RawMessage  `json:"branchId"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Data != nil {
		return toRows(body.Data), parseBranchID(body.BranchID), nil
	}

	var bare []map[string]any
	if err := json.Unmarshal(raw, &bare); err != nil {
		return nil, 0, err
	}
	return toRows(bare), 0, nil
}

func toRows(items []map[string]any) []tabular.Row {
	rows := make([]tabular.Row, 0, len(items))
	for _, item := range items {
		row := make(tabular.Row, len(item))
		for k, v := range item {
			row[strings.TrimSpace(k)] = stringifyCell(v)
		}
		rows = append(rows, row)
	}
	return rows
}

func stringifyCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func parseBranchID(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return atoi(s)
	}
	return 0
}

func isXLSX(filename string, raw []byte) bool {
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		return true
	}
	return bytes.HasPrefix(raw, xlsxMagic)
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
