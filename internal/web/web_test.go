package web

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/todo-list/internal/models"
)

func TestTemplates_ParseAllPages(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	for _, name := range []string{
		"index.html", "signup.html", "login.html", "list.html", "create.html",
		"edit.html", "details.html", "export.html", "error.html",
	} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestTemplates_Details(t *testing.T) {
	tmpl := MustTemplates()

	task := &models.Task{
		ID:          3,
		Description: "Buy milk",
		Priority:    models.PriorityHigh,
		CreatedAt:   time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		Tags:        []models.Tag{{Name: "home"}, {Name: "errands"}},
	}

	var buf bytes.Buffer
	err := tmpl.ExecuteTemplate(&buf, "details.html", map[string]interface{}{
		"Task":    task,
		"IsOwner": false,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "High")
	assert.Contains(t, out, "home, errands")
	assert.Contains(t, out, "2024-05-01 09:30")
	assert.NotContains(t, out, "/edit/3")
}

func TestTemplates_TaskFormSelectsPriority(t *testing.T) {
	tmpl := MustTemplates()

	var buf bytes.Buffer
	err := tmpl.ExecuteTemplate(&buf, "create.html", map[string]interface{}{
		"Form":       map[string]interface{}{"Description": "x", "Tags": "", "Priority": 3},
		"Errors":     map[string]string{"Description": "too long"},
		"Priorities": models.Priorities,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `<option value="3" selected>Low</option>`)
	assert.Contains(t, out, "too long")
}
