// Package server exposes the reconciliation and weekly workflows over HTTP.
package server

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/orayew2002/rollbook/config"
	"github.com/orayew2002/rollbook/domain"
	"github.com/orayew2002/rollbook/processor"
	"github.com/orayew2002/rollbook/report"
	"github.com/orayew2002/rollbook/roster"
	"github.com/orayew2002/rollbook/weekly"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// APIHandler serves one weekly session. Requests touching the session run one
// at a time.
type APIHandler struct {
	mu      sync.Mutex
	session *weekly.Session
	logger  *log.Logger
}

// NewAPIHandler creates a handler around session.
func NewAPIHandler(session *weekly.Session, logger *log.Logger) *APIHandler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &APIHandler{session: session, logger: logger}
}

// NewRouter wires every route onto a gin engine.
func NewRouter(h *APIHandler) *gin.Engine {
	router := gin.Default()

	api := router.Group("/api")
	{
		api.GET("/ping", PingHandler)

		api.POST("/weekly/:day", h.LoadDay)
		api.GET("/weekly", h.GetWeekly)
		api.GET("/weekly/export", h.ExportWeekly)
		api.DELETE("/weekly", h.ResetWeekly)

		api.POST("/reconcile", h.Reconcile)
	}

	return router
}

// --- Weekly Handlers ---

type dayJSON struct {
	Absences int `json:"absences"`
	Leaves   int `json:"leaves"`
}

type rowJSON struct {
	Name          string             `json:"name"`
	ID            string             `json:"id"`
	Days          map[string]dayJSON `json:"days"`
	TotalAbsences int                `json:"total_absences"`
	TotalLeaves   int                `json:"total_leaves"`
}

func toJSON(rows []domain.AggregateRow) []rowJSON {
	out := make([]rowJSON, 0, len(rows))
	for _, r := range rows {
		j := rowJSON{
			Name:          r.Key.Name,
			ID:            r.Key.ID,
			Days:          make(map[string]dayJSON, len(domain.Days)),
			TotalAbsences: r.TotalAbsences,
			TotalLeaves:   r.TotalLeaves,
		}
		for _, d := range domain.Days {
			t := r.Day(d)
			j.Days[string(d)] = dayJSON{Absences: t.Absences, Leaves: t.Leaves}
		}
		out = append(out, j)
	}
	return out
}

// LoadDay handles POST /api/weekly/:day with one or more multipart "files".
func (h *APIHandler) LoadDay(c *gin.Context) {
	day, err := domain.ParseDay(c.Param("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day", "message": err.Error()})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form", "message": err.Error()})
		return
	}
	uploads := form.File["files"]
	if len(uploads) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files", "message": "Missing 'files' in form data"})
		return
	}

	dir, err := os.MkdirTemp("", "rollbook-upload-*")
	if err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrIO, err))
		return
	}
	defer os.RemoveAll(dir)

	paths := make([]string, 0, len(uploads))
	for i, fh := range uploads {
		path, err := saveUpload(c, fh, dir, strconv.Itoa(i))
		if err != nil {
			h.respondError(c, err)
			return
		}
		paths = append(paths, path)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	n, err := h.session.AddDay(c.Request.Context(), day, paths)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Printf("loaded %d file(s) for %s", n, day)
	c.JSON(http.StatusOK, gin.H{
		"day":    day,
		"loaded": n,
		"files":  h.session.Loaded(day),
	})
}

// GetWeekly handles GET /api/weekly; ?all=true includes perfect records.
func (h *APIHandler) GetWeekly(c *gin.Context) {
	all, _ := strconv.ParseBool(c.DefaultQuery("all", "false"))

	h.mu.Lock()
	rows := h.session.Aggregate()
	h.mu.Unlock()

	shown, status := report.View(rows, all)
	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"rows":   toJSON(shown),
	})
}

// ExportWeekly handles GET /api/weekly/export.
func (h *APIHandler) ExportWeekly(c *gin.Context) {
	h.mu.Lock()
	rows := h.session.Aggregate()
	h.mu.Unlock()

	data, err := report.WriteToBytes(rows)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="weekly_report.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ResetWeekly handles DELETE /api/weekly.
func (h *APIHandler) ResetWeekly(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.session.Reset(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session cleared"})
}

// --- Reconciliation Handler ---

// Reconcile handles POST /api/reconcile. It returns the annotated roster with
// the counts repeated in X-* headers.
func (h *APIHandler) Reconcile(c *gin.Context) {
	att, err := roster.ParseSelection(c.PostForm("attendance_rows"), columnField(c, "attendance_col", config.DefaultAttendanceCol))
	if err != nil {
		h.respondError(c, fmt.Errorf("attendance: %w", err))
		return
	}
	ros, err := roster.ParseSelection(c.PostForm("roster_rows"), columnField(c, "roster_col", config.DefaultRosterCol))
	if err != nil {
		h.respondError(c, fmt.Errorf("roster: %w", err))
		return
	}

	attFile, err := c.FormFile("attendance")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no attendance file", "message": "Missing 'attendance' in form data"})
		return
	}
	rosFile, err := c.FormFile("roster")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no roster file", "message": "Missing 'roster' in form data"})
		return
	}

	dir, err := os.MkdirTemp("", "rollbook-reconcile-*")
	if err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrIO, err))
		return
	}
	defer os.RemoveAll(dir)

	attPath, err := saveUpload(c, attFile, dir, "attendance")
	if err != nil {
		h.respondError(c, err)
		return
	}
	rosPath, err := saveUpload(c, rosFile, dir, "roster")
	if err != nil {
		h.respondError(c, err)
		return
	}

	rec, err := processor.Process(processor.Options{
		AttendancePath: attPath,
		Attendance:     att,
		RosterPath:     rosPath,
		Roster:         ros,
	}, h.logger)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := filepath.Join(dir, "annotated.xlsx")
	if err := rec.Export(out); err != nil {
		_ = rec.Discard()
		h.respondError(c, err)
		return
	}

	data, err := os.ReadFile(out)
	if err != nil {
		h.respondError(c, fmt.Errorf("%w: read %s: %v", domain.ErrIO, out, err))
		return
	}

	res := rec.Result
	c.Header("X-Total-Attendance", strconv.Itoa(res.TotalInAttendance))
	c.Header("X-Present", strconv.Itoa(res.Present))
	c.Header("X-Absent", strconv.Itoa(res.Absent))
	c.Header("X-Discrepancy", strconv.Itoa(res.Discrepancy()))
	c.Header("Content-Disposition", `attachment; filename="reconciled.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// PingHandler handles GET /api/ping.
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Pong!"})
}

// --- Helpers ---

func columnField(c *gin.Context, name, def string) string {
	v := strings.TrimSpace(c.PostForm(name))
	if v == "" {
		v = def
	}
	return strings.ToUpper(v)
}

// saveUpload stores fh in dir under name, keeping the original extension so the
// workbook reader can pick the right format first.
func saveUpload(c *gin.Context, fh *multipart.FileHeader, dir, name string) (string, error) {
	dst := filepath.Join(dir, name+strings.ToLower(filepath.Ext(fh.Filename)))
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		return "", fmt.Errorf("%w: save upload %s: %v", domain.ErrIO, fh.Filename, err)
	}
	return dst, nil
}

// StatusFor maps an error kind to an HTTP status.
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindInvalidRange, domain.KindInvalidColumn, domain.KindMalformedFile:
		return http.StatusBadRequest
	case domain.KindNoData:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *APIHandler) respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Printf("error in %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": domain.KindOf(err).String(), "message": err.Error()})
}
