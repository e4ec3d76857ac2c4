package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/mikobi/darasa/core/student"
	"github.com/mikobi/darasa/core/upload"
	testutil "github.com/mikobi/darasa/tests"
)

func Test_reviewApi_login(t *testing.T) {
	app := setup(t)

	testutil.CreateTeacher(t, tchRepo, "teacher123", "Teacher Li", "123456")

	authFailed := marchallObj(t, httpErr{Error: "authentication failed"})

	tests := []httpTest{
		{name: "wrong password", body: marchallObj(t, map[string]string{"id": "teacher123", "password": "654321"}), wantCode: http.StatusBadRequest, wantData: authFailed},
		{name: "unknown ID", body: marchallObj(t, map[string]string{"id": "ghost404", "password": "123456"}), wantCode: http.StatusBadRequest, wantData: authFailed},
		{name: "ok", body: marchallObj(t, map[string]string{"id": "teacher123", "password": "123456"}), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/teachers/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_reviewApi_queryPending(t *testing.T) {
	app := setup(t)

	std1 := testutil.CreateStudent(t, stdRepo, "student123", "Zhang San", "", "123456", 0)
	std2 := testutil.CreateStudent(t, stdRepo, "student456", "Li Si", "", "123456", 0)
	tch := testutil.CreateTeacher(t, tchRepo, "teacher123", "Teacher Li", "123456")

	now := time.Now().UTC()
	old := testutil.CreateUpload(t, upRepo, std1, upload.StatusPending, now.Add(-2*time.Hour))
	testutil.CreateUpload(t, upRepo, std1, upload.StatusApproved, now.Add(-time.Hour))
	fresh := testutil.CreateUpload(t, upRepo, std2, upload.StatusPending, now)

	token := getTeacherToken(t, tch)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/reviews/pending", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Teacher required", path: "/v1/reviews/pending", token: getStudentToken(t, std1), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Pending only, newest first", path: "/v1/reviews/pending", token: token, wantCode: http.StatusOK, wantData: marchallList(t, fresh, old)},
		{name: "order by created_at", path: "/v1/reviews/pending?ordering=created_at", token: token, wantCode: http.StatusOK, wantData: marchallList(t, old, fresh)},
		{name: "order by -created_at", path: "/v1/reviews/pending?ordering=-created_at", token: token, wantCode: http.StatusOK, wantData: marchallList(t, fresh, old)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_reviewApi_review(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	std := testutil.CreateStudent(t, stdRepo, "student456", "Li Si", "", "123456", 80)
	tch := testutil.CreateTeacher(t, tchRepo, "teacher123", "Teacher Li", "123456")
	up := testutil.CreateUpload(t, upRepo, std, upload.StatusPending)

	token := getTeacherToken(t, tch)
	path := func(id string) string { return fmt.Sprintf("/v1/reviews/%s", id) }

	approve := marchallObj(t, map[string]interface{}{"decision": "approved"})

	tests := []httpTest{
		{name: "Auth required", path: path(up.ID), body: approve, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Teacher required", path: path(up.ID), body: approve, token: getStudentToken(t, std), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "invalid decision", path: path(up.ID), body: marchallObj(t, map[string]interface{}{"decision": "maybe"}), token: token, wantCode: http.StatusBadRequest},
		{
			name: "unknown upload", path: path("nope"), body: approve, token: token, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "upload not found"}),
		},
		{name: "approved", path: path(up.ID), body: approve, token: token, wantCode: http.StatusOK, extra: 80 + upload.DefaultReviewPoints},
		// reviewed rows are terminal
		{
			name: "re-review", path: path(up.ID), body: approve, token: token, wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "upload has already been reviewed"}),
			extra:    80 + upload.DefaultReviewPoints, // unchanged
		},
		{
			name: "re-review as rejected", path: path(up.ID), body: marchallObj(t, map[string]interface{}{"decision": "rejected"}), token: token,
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "upload has already been reviewed"}),
			extra:    80 + upload.DefaultReviewPoints, // unchanged
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if wantScore, ok := tt.extra.(int); ok {
				refreshed, err := stdRepo.GetStudentByStudentID(ctx, std.StudentID)
				if err != nil {
					t.Fatalf("GetStudentByStudentID() error = %v", err)
				}
				if refreshed.Score != wantScore {
					t.Errorf("score = %d, want %d", refreshed.Score, wantScore)
				}
			}

			if tt.name == "approved" {
				var got upload.Upload
				if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if got.Status != upload.StatusApproved {
					t.Errorf("status = %q, want %q", got.Status, upload.StatusApproved)
				}
				if !got.ReviewedAt.Valid {
					t.Error("reviewed_at not set")
				}
			}
		})
	}
}

func Test_reviewApi_reviewWithPoints(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	std := testutil.CreateStudent(t, stdRepo, "student456", "Li Si", "", "123456", 80)
	tch := testutil.CreateTeacher(t, tchRepo, "teacher123", "Teacher Li", "123456")
	up := testutil.CreateUpload(t, upRepo, std, upload.StatusPending)

	body := marchallObj(t, map[string]interface{}{"decision": "approved", "points": 25})
	req, rec := newAuthRequest(http.MethodPost, "/v1/reviews/"+up.ID, getTeacherToken(t, tch), body)
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	refreshed, err := stdRepo.GetStudentByStudentID(ctx, std.StudentID)
	if err != nil {
		t.Fatalf("GetStudentByStudentID() error = %v", err)
	}
	if refreshed.Score != 105 {
		t.Errorf("score = %d, want 105", refreshed.Score)
	}
}

func Test_reviewApi_reviewRejected(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	std := testutil.CreateStudent(t, stdRepo, "student456", "Li Si", "", "123456", 80)
	tch := testutil.CreateTeacher(t, tchRepo, "teacher123", "Teacher Li", "123456")
	up := testutil.CreateUpload(t, upRepo, std, upload.StatusPending)

	body := marchallObj(t, map[string]interface{}{"decision": "rejected"})
	req, rec := newAuthRequest(http.MethodPost, "/v1/reviews/"+up.ID, getTeacherToken(t, tch), body)
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	refreshed, err := stdRepo.GetStudentByStudentID(ctx, std.StudentID)
	if err != nil {
		t.Fatalf("GetStudentByStudentID() error = %v", err)
	}
	if refreshed.Score != 80 {
		t.Errorf("score = %d, want 80 (rejection never credits points)", refreshed.Score)
	}
}

func Test_reviewApi_stats(t *testing.T) {
	app := setup(t)

	std1 := testutil.CreateStudent(t, stdRepo, "student123", "Zhang San", "", "123456", 0)
	std2 := testutil.CreateStudent(t, stdRepo, "student456", "Li Si", "", "123456", 80)
	tch := testutil.CreateTeacher(t, tchRepo, "teacher123", "Teacher Li", "123456")

	testutil.CreateUpload(t, upRepo, std1, upload.StatusPending)
	testutil.CreateUpload(t, upRepo, std1, upload.StatusApproved)
	testutil.CreateUpload(t, upRepo, std2, upload.StatusApproved)
	testutil.CreateUpload(t, upRepo, std2, upload.StatusRejected)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Teacher required", token: getStudentToken(t, std1), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Counts", token: getTeacherToken(t, tch), wantCode: http.StatusOK,
			wantData: marchallObj(t, upload.Stats{TotalStudents: 2, Pending: 1, Approved: 2}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard/stats", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_reviewApi_leaderboard(t *testing.T) {
	app := setup(t)

	tch := testutil.CreateTeacher(t, tchRepo, "teacher123", "Teacher Li", "123456")
	for i := 0; i < 12; i++ {
		testutil.CreateStudent(t, stdRepo, fmt.Sprintf("student%02d", i), fmt.Sprintf("Student %02d", i), "", "123456", i*10)
	}

	token := getTeacherToken(t, tch)

	entry := func(i int) student.RankEntry {
		return student.RankEntry{
			StudentID: fmt.Sprintf("student%02d", i),
			Name:      fmt.Sprintf("Student %02d", i),
			Score:     i * 10,
		}
	}
	top10 := make([]interface{}, 0, 10)
	for i := 11; i >= 2; i-- {
		top10 = append(top10, entry(i))
	}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/dashboard/leaderboard", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Top 10 by default", path: "/v1/dashboard/leaderboard", token: token, wantCode: http.StatusOK, wantData: marchallList(t, top10...)},
		{name: "Smaller limit", path: "/v1/dashboard/leaderboard?limit=3", token: token, wantCode: http.StatusOK, wantData: marchallList(t, entry(11), entry(10), entry(9))},
		// the cap holds no matter what the client asks for
		{name: "Limit is capped", path: "/v1/dashboard/leaderboard?limit=100", token: token, wantCode: http.StatusOK, wantData: marchallList(t, top10...)},
		{name: "Bad limit falls back", path: "/v1/dashboard/leaderboard?limit=lol", token: token, wantCode: http.StatusOK, wantData: marchallList(t, top10...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
