package tests

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/mikobi/darasa/apps/api/echo"
	"github.com/mikobi/darasa/core"
	"github.com/mikobi/darasa/core/student"
	"github.com/mikobi/darasa/core/teacher"
	"github.com/mikobi/darasa/core/upload"
	emailsvc "github.com/mikobi/darasa/services/email"
	dummydb "github.com/mikobi/darasa/storage/database/dummy"
	testutil "github.com/mikobi/darasa/tests"
)

var (
	stdRepo student.Repository
	tchRepo teacher.Repository
	upRepo  upload.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func setup(t *testing.T) Server {
	t.Helper()

	// set up DB & repos
	db := dummydb.Open()
	stdRepo = dummydb.NewStudentRepository(db)
	tchRepo = dummydb.NewTeacherRepository(db)
	upRepo = dummydb.NewUploadRepository(db)

	conf := &core.Config{
		TestMode:  true,
		AppName:   "Darasa",
		SecretKey: "s3cret",
		Server:    core.ServerConfig{JWTExpirationDelta: 10 * time.Minute},
	}

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	stdSvc := student.NewService(stdRepo)
	tchSvc := teacher.NewService(tchRepo)
	upSvc := upload.NewService(upRepo, stdRepo, mailSvc, testutil.NopLogger{})

	validate, translator := testutil.NewValidator()

	// set up server
	return NewServer(
		"", /* addr */
		ServerDeps{
			Conf:       conf,
			Logger:     testutil.NopLogger{},
			StudentSvc: stdSvc,
			TeacherSvc: tchSvc,
			UploadSvc:  upSvc,
			Validate:   validate,
			Translator: translator,
		},
	)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newUploadRequest builds a multipart photo submission.
func newUploadRequest(t *testing.T, path, token, filename, contentType string, data []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="photo"; filename="`+filename+`"`)
		hdr.Set("Content-Type", contentType)
		part, err := w.CreatePart(hdr)
		if err != nil {
			t.Fatalf("newUploadRequest(): %v", err)
		}
		if _, err = part.Write(data); err != nil {
			t.Fatalf("newUploadRequest(): %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("newUploadRequest(): %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getStudentToken(t *testing.T, std student.Student) string {
	t.Helper()

	token, err := GenerateToken(GetStudentClaims(std))
	if err != nil {
		t.Fatalf("getStudentToken(): %v", err)
	}
	return token
}

func getTeacherToken(t *testing.T, tch teacher.Teacher) string {
	t.Helper()

	token, err := GenerateToken(GetTeacherClaims(tch))
	if err != nil {
		t.Fatalf("getTeacherToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
