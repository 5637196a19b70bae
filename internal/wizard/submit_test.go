// internal/wizard/submit_test.go
package wizard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housing-portal/internal/api"
	errs "housing-portal/internal/common/errors"
)

type staticTokens struct {
	access, refresh string
}

func (s *staticTokens) AccessToken() string  { return s.access }
func (s *staticTokens) RefreshToken() string { return s.refresh }
func (s *staticTokens) UpdateTokens(access, refresh string) error {
	s.access, s.refresh = access, refresh
	return nil
}

func completedNSFASForm(t *testing.T) *Form {
	t.Helper()
	f := newTestForm()
	advanceToFunding(t, f)
	f.SetField("funding_source", FundingNSFAS)
	f.SetField("nsfas_reference_number", "NSFAS-2027-001")
	f.SetAttachment("nsfas_approval_document", pdfAttachment("approval.pdf"))
	require.True(t, f.Next())
	f.SetField("has_vehicle", "false")
	require.True(t, f.Next())
	f.SetAttachment("id_document", pdfAttachment("id.pdf"))
	f.SetAttachment("proof_of_registration", pdfAttachment("reg.pdf"))
	return f
}

func testClient(t *testing.T, handler http.HandlerFunc) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return api.NewClient(api.Options{
		BaseURL: srv.URL,
		Tokens:  &staticTokens{access: "token-a", refresh: "token-r"},
	})
}

func TestBuildSubmissionCarriesExactlyOneSubDocument(t *testing.T) {
	f := completedNSFASForm(t)
	// Leftovers from an abandoned bursary selection must not leak through.
	f.Values["bursary_name"] = "Allan Gray"

	sub := f.BuildSubmission()

	assert.Equal(t, "nsfas_details", sub.SubDocName)
	doc, err := json.Marshal(sub.SubDoc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"reference_number":"NSFAS-2027-001"}`, string(doc))

	assert.NotContains(t, sub.Fields, "nsfas_reference_number")
	assert.NotContains(t, sub.Fields, "bursary_name")
	assert.Equal(t, "Thabo", sub.Fields["first_name"])
	assert.Equal(t, "2006-03-15", sub.Fields["date_of_birth"])

	assert.Contains(t, sub.Files, "id_document")
	assert.Contains(t, sub.Files, "proof_of_registration")
	assert.Contains(t, sub.Files, "nsfas_approval_document")
	assert.NotContains(t, sub.Files, "proof_of_deposit")
}

func TestBuildSubmissionSkipsEmptyValues(t *testing.T) {
	f := completedNSFASForm(t)
	f.Values["medical_conditions"] = ""

	sub := f.BuildSubmission()

	assert.NotContains(t, sub.Fields, "medical_conditions")
}

func TestSubmitSendsMultipartAndMarksSubmitted(t *testing.T) {
	var gotSubDoc string
	var gotFields map[string][]string
	var gotFiles []string

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/application/create/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(10<<20))

		gotSubDoc = r.FormValue("nsfas_details")
		gotFields = r.MultipartForm.Value
		for name := range r.MultipartForm.File {
			gotFiles = append(gotFiles, name)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 41, "reference_number": "APP-2027-0041"}`))
	})

	f := completedNSFASForm(t)
	require.NoError(t, f.Submit(context.Background(), client))

	assert.True(t, f.Submitted())
	assert.JSONEq(t, `{"reference_number":"NSFAS-2027-001"}`, gotSubDoc)
	assert.NotContains(t, gotFields, "nsfas_reference_number")
	assert.ElementsMatch(t, []string{"id_document", "proof_of_registration", "nsfas_approval_document"}, gotFiles)
}

func TestSubmitMapsServerFieldErrors(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"spu_student_number": ["A student with this number has already applied."]}`))
	})

	f := completedNSFASForm(t)
	err := f.Submit(context.Background(), client)

	require.Error(t, err)
	assert.False(t, f.Submitted())
	assert.Equal(t, "A student with this number has already applied.", f.Errors["spu_student_number"])

	se, ok := errs.AsStandard(err)
	require.True(t, ok)
	assert.Equal(t, "Please correct the highlighted fields.", se.Message)
}

func TestSubmitRefusedBeforeFinalStep(t *testing.T) {
	f := newTestForm()

	err := f.Submit(context.Background(), nil)

	require.Error(t, err)
	assert.False(t, f.Submitted())
}

func TestSubmitRevalidatesDocuments(t *testing.T) {
	f := completedNSFASForm(t)
	delete(f.Attachments, "id_document")

	err := f.Submit(context.Background(), nil)

	require.Error(t, err)
	assert.Equal(t, "ID Document is required.", f.Errors["id_document"])
}
