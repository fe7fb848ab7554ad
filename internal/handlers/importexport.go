package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"buyer-lead-console/internal/filters"
	"buyer-lead-console/internal/session"

	"github.com/gin-gonic/gin"
)

// importMaxRows caps the number of data rows accepted per upload, matching
// the remote API's import contract
const importMaxRows = 200

var importHeader = []string{
	"fullName", "email", "phone", "city", "propertyType", "bhk", "purpose",
	"budgetMin", "budgetMax", "timeline", "source", "notes", "tags", "status",
}

var (
	errNotCSV      = errors.New("only .csv files are accepted")
	errTooManyRows = fmt.Errorf("a CSV file may contain at most %d data rows", importMaxRows)
)

// precheckCSV rejects an upload locally before any network call: wrong
// extension, unreadable CSV, bad header, or too many rows. Row-level
// validation stays with the remote API.
func precheckCSV(filename string, file io.Reader) error {
	if strings.ToLower(filepath.Ext(filename)) != ".csv" {
		return errNotCSV
	}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return errors.New("the CSV file is empty")
	}
	if err != nil {
		return fmt.Errorf("could not read the CSV file: %v", err)
	}
	if !headerMatches(header) {
		return fmt.Errorf("unexpected CSV header; expected: %s", strings.Join(importHeader, ","))
	}

	rows := 0
	for {
		if _, err := reader.Read(); err == io.EOF {
			break
		} else if err != nil {
			return fmt.Errorf("could not read the CSV file: %v", err)
		}
		rows++
		if rows > importMaxRows {
			return errTooManyRows
		}
	}
	return nil
}

func headerMatches(header []string) bool {
	if len(header) != len(importHeader) {
		return false
	}
	for i, col := range header {
		if strings.TrimSpace(col) != importHeader[i] {
			return false
		}
	}
	return true
}

// ImportPage renders the upload form
func (h *Handler) ImportPage(c *gin.Context) {
	data := h.pageData(c, "Import Leads")
	data["Header"] = strings.Join(importHeader, ",")
	data["MaxRows"] = importMaxRows
	c.HTML(http.StatusOK, "buyer_import.html", data)
}

// ImportCSV uploads a CSV file to the API. Three outcomes are kept distinct:
// rejected locally (no request sent), rejected as a whole by the server, and
// accepted with per-row errors.
func (h *Handler) ImportCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("csvFile")
	if err != nil {
		h.renderImportResult(c, "Please choose a CSV file to upload.", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.renderImportResult(c, "Could not read the uploaded file.", nil)
		return
	}
	defer file.Close()

	if err := precheckCSV(fileHeader.Filename, file); err != nil {
		h.renderImportResult(c, err.Error(), nil)
		return
	}

	// Rewind: the precheck consumed the stream
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.renderImportResult(c, "Could not read the uploaded file.", nil)
		return
	}

	result, err := h.api.ImportCSV(session.Credential(c), fileHeader.Filename, file)
	if err != nil {
		// Whole-file rejection by the server
		h.renderImportResult(c, failureMessage(err), nil)
		return
	}

	log.Printf("[import] inserted=%d row_errors=%d", result.Inserted, len(result.RowErrors))
	h.renderImportResult(c, "", result)
}

func (h *Handler) renderImportResult(c *gin.Context, errMsg string, result interface{}) {
	data := h.pageData(c, "Import Leads")
	data["Header"] = strings.Join(importHeader, ",")
	data["MaxRows"] = importMaxRows
	status := http.StatusOK
	if errMsg != "" {
		data["Error"] = errMsg
		status = http.StatusBadRequest
	}
	if result != nil {
		data["Result"] = result
	}
	c.HTML(status, "buyer_import.html", data)
}

// ExportCSV downloads the leads matching the current filters as a CSV file
// named with today's date
func (h *Handler) ExportCSV(c *gin.Context) {
	state := filters.Parse(c.Request.URL.Query())

	payload, err := h.api.ExportCSV(session.Credential(c), state.Values())
	if err != nil {
		h.handleAPIError(c, err)
		return
	}

	filename := fmt.Sprintf("buyer-leads-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}
