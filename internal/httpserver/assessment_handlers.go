package httpserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"booteh.app/web/internal/backend"
	mw "booteh.app/web/internal/middleware"
	"booteh.app/web/internal/observability"
)

// The self-assessment asks QuestionCount questions answered on a 1..ScaleMax scale.
const (
	QuestionCount = 22
	ScaleMax      = 5
)

// selfView backs the self-assessment form.
type selfView struct {
	Questions []question
	Scale     []int
	ErrorKey  string
	Missing   int
}

type question struct {
	ID       string
	Number   int
	Selected int
}

func newSelfView(answers backend.Answers) selfView {
	v := selfView{Questions: make([]question, QuestionCount), Scale: make([]int, ScaleMax)}
	for i := range v.Questions {
		id := questionID(i + 1)
		v.Questions[i] = question{ID: id, Number: i + 1, Selected: answers[id]}
	}
	for i := range v.Scale {
		v.Scale[i] = i + 1
	}
	return v
}

func questionID(n int) string { return fmt.Sprintf("q%d", n) }

func (a *app) selfForm(w http.ResponseWriter, r *http.Request) {
	a.renderSelf(w, r, http.StatusOK, newSelfView(nil))
}

func (a *app) renderSelf(w http.ResponseWriter, r *http.Request, status int, view selfView) {
	vm := a.page(r, "self.title", "self.intro")
	vm.SEO.Robots = "noindex"
	vm.Content = view
	a.render.Page(w, r, status, "self", vm)
}

// selfSubmit validates every answer locally and sends the whole set in one
// backend call.
func (a *app) selfSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	answers, missing := parseAnswers(r)
	if missing > 0 {
		view := newSelfView(answers)
		view.ErrorKey, view.Missing = "self.incomplete", missing
		a.renderSelf(w, r, http.StatusUnprocessableEntity, view)
		return
	}

	res, err := a.cfg.Backend.SubmitAnswers(r.Context(), answers)
	if err != nil || !res.Success {
		observability.FromContext(r.Context()).Warn("assessment submission failed",
			zap.Error(err), zap.String("backend_message", res.Message))
		view := newSelfView(answers)
		view.ErrorKey = "errors.submit_failed"
		a.renderSelf(w, r, http.StatusBadGateway, view)
		return
	}
	if sess, ok := mw.SessionFromContext(r.Context()); ok {
		sess.SetFlash("success", "self.submitted")
	}
	redirect(w, r, "/assessments")
}

// parseAnswers keeps answers within the scale and counts the rest as missing.
func parseAnswers(r *http.Request) (backend.Answers, int) {
	answers := make(backend.Answers, QuestionCount)
	missing := 0
	for i := 1; i <= QuestionCount; i++ {
		id := questionID(i)
		n, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get(id)))
		if err != nil || n < 1 || n > ScaleMax {
			missing++
			continue
		}
		answers[id] = n
	}
	return answers, missing
}
