package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pets-api/internal/adapters/storage/memory"
	"pets-api/internal/adapters/storage/storetest"
	"pets-api/internal/platform/httpclient"
	"pets-api/internal/router"
)

type groupBody struct {
	ID             string `json:"id"`
	ScientificName string `json:"scientific_name"`
}

type traitBody struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type petBody struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Age    int         `json:"age"`
	Weight float64     `json:"weight"`
	Sex    string      `json:"sex"`
	Group  *groupBody  `json:"group"`
	Traits []traitBody `json:"traits"`
}

type pageBody struct {
	Count    int       `json:"count"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []petBody `json:"results"`
}

func TestHTTP_EndToEnd_PetLifecycle(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	// 1) Alta con grupo y traits nuevos
	milo := createPet(t, ts.URL, map[string]any{
		"name":   "Milo",
		"age":    3,
		"weight": 12.5,
		"group":  map[string]any{"scientific_name": "Canis lupus familiaris"},
		"traits": []map[string]any{{"name": "friendly"}, {"name": "calm"}},
	})
	if milo.Sex != "Not Informed" {
		t.Fatalf("expected default sex, got %q", milo.Sex)
	}
	if got := traitNames(milo); len(got) != 2 || got[0] != "calm" || got[1] != "friendly" {
		t.Fatalf("unexpected traits %v", got)
	}

	// 2) Mismo grupo con otro case => mismo id
	rex := createPet(t, ts.URL, map[string]any{
		"name":   "Rex",
		"age":    5,
		"weight": 30,
		"sex":    "Male",
		"group":  map[string]any{"scientific_name": "CANIS LUPUS FAMILIARIS"},
		"traits": []map[string]any{{"name": "Friendly"}, {"name": "loud"}},
	})
	if rex.Group == nil || milo.Group == nil || rex.Group.ID != milo.Group.ID {
		t.Fatalf("expected shared group, got milo=%+v rex=%+v", milo.Group, rex.Group)
	}

	// 3) GET por id
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+milo.ID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get pet, got %d body=%s", st, string(body))
		}
	}

	// 4) PATCH: de la lista de traits sólo queda el último
	{
		st, body := doReq(t, ts.URL, "PATCH", "/pets/"+milo.ID, map[string]any{
			"name":   "Milo II",
			"traits": []map[string]any{{"name": "lazy"}, {"name": "loyal"}},
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch pet, got %d body=%s", st, string(body))
		}
		var p petBody
		mustUnmarshal(t, body, &p)
		if p.Name != "Milo II" {
			t.Fatalf("expected patched name, got %q", p.Name)
		}
		if got := traitNames(p); len(got) != 1 || got[0] != "loyal" {
			t.Fatalf("expected only last trait, got %v", got)
		}
	}

	// 5) Filtro por trait sin distinguir mayúsculas
	{
		st, body := doReq(t, ts.URL, "GET", "/pets?trait=FRIENDLY", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list, got %d body=%s", st, string(body))
		}
		var page pageBody
		mustUnmarshal(t, body, &page)
		if page.Count != 1 || len(page.Results) != 1 || page.Results[0].ID != rex.ID {
			t.Fatalf("expected only rex, got %+v", page)
		}
	}

	// 6) DELETE y luego 404
	{
		st, body := doReq(t, ts.URL, "DELETE", "/pets/"+rex.ID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 delete, got %d body=%s", st, string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/pets/"+rex.ID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/pets/"+rex.ID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 on second delete, got %d", st)
		}
	}
}

func TestHTTP_ListPagination(t *testing.T) {
	repo := memory.NewPetRepo()
	storetest.SeedPets(t, repo, 3)

	ts := httptest.NewServer(router.NewRouter(router.Options{Repo: repo}))
	defer ts.Close()

	st, body := doReq(t, ts.URL, "GET", "/pets", nil)
	require.Equal(t, http.StatusOK, st, string(body))

	var first pageBody
	mustUnmarshal(t, body, &first)
	assert.Equal(t, 3, first.Count)
	assert.Len(t, first.Results, 2, "default page size")
	assert.Nil(t, first.Previous)
	require.NotNil(t, first.Next)
	assert.True(t, strings.HasSuffix(*first.Next, "/pets?page=2"), *first.Next)

	st, body = doReq(t, ts.URL, "GET", "/pets?page=2", nil)
	require.Equal(t, http.StatusOK, st, string(body))

	var second pageBody
	mustUnmarshal(t, body, &second)
	assert.Len(t, second.Results, 1)
	assert.Nil(t, second.Next)
	require.NotNil(t, second.Previous)
	assert.Equal(t, "seed-02", second.Results[0].ID)

	st, body = doReq(t, ts.URL, "GET", "/pets?page_size=3", nil)
	require.Equal(t, http.StatusOK, st, string(body))
	var all pageBody
	mustUnmarshal(t, body, &all)
	assert.Len(t, all.Results, 3)

	for _, q := range []string{"page=3", "page=0", "page=last"} {
		st, _ := doReq(t, ts.URL, "GET", "/pets?"+q, nil)
		assert.Equal(t, http.StatusNotFound, st, q)
	}
}

func TestHTTP_ListEmpty(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	st, body := doReq(t, ts.URL, "GET", "/pets", nil)
	require.Equal(t, http.StatusOK, st)
	assert.JSONEq(t, `{"count":0,"next":null,"previous":null,"results":[]}`, string(body))
}

func TestHTTP_CreatePet_Validation(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	t.Run("missing fields", func(t *testing.T) {
		st, body := doReq(t, ts.URL, "POST", "/pets", map[string]any{"name": "Milo"})
		require.Equal(t, http.StatusBadRequest, st)

		var fields map[string][]string
		mustUnmarshal(t, body, &fields)
		for _, k := range []string{"age", "weight", "group", "traits"} {
			assert.Equal(t, []string{"This field is required."}, fields[k], k)
		}
		assert.NotContains(t, fields, "name")
	})

	t.Run("nested errors", func(t *testing.T) {
		st, body := doReq(t, ts.URL, "POST", "/pets", map[string]any{
			"name":   "Milo",
			"age":    -1,
			"weight": 1,
			"sex":    "male",
			"group":  map[string]any{"scientific_name": ""},
			"traits": []map[string]any{{"name": "ok"}, {"name": strings.Repeat("x", 21)}},
		})
		require.Equal(t, http.StatusBadRequest, st)

		var fields map[string][]string
		mustUnmarshal(t, body, &fields)
		assert.Contains(t, fields, "age")
		assert.Contains(t, fields, "sex")
		assert.Contains(t, fields, "group.scientific_name")
		assert.Contains(t, fields, "traits[1].name")
	})

	t.Run("wrong type", func(t *testing.T) {
		st, body := doReq(t, ts.URL, "POST", "/pets", map[string]any{"name": "Milo", "age": "three"})
		require.Equal(t, http.StatusBadRequest, st)
		assert.Contains(t, string(body), `"age"`)
	})

	t.Run("invalid json", func(t *testing.T) {
		st, body := doRaw(t, ts.URL, "POST", "/pets", `{"name": `)
		require.Equal(t, http.StatusBadRequest, st)
		assert.JSONEq(t, `{"detail":"invalid json"}`, string(body))
	})

	// Nada de lo anterior dejó filas.
	st, body := doReq(t, ts.URL, "GET", "/pets", nil)
	require.Equal(t, http.StatusOK, st)
	var page pageBody
	mustUnmarshal(t, body, &page)
	assert.Zero(t, page.Count)
}

func TestHTTP_PatchPet_NotFoundBeforeValidation(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	st, body := doReq(t, ts.URL, "PATCH", "/pets/missing", map[string]any{"age": -5})
	require.Equal(t, http.StatusNotFound, st)
	assert.JSONEq(t, `{"detail":"pet not found"}`, string(body))
}

func TestHTTP_Health(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		ts := httptest.NewServer(router.NewRouter(router.Options{}))
		defer ts.Close()

		c, err := httpclient.New(ts.URL, 0)
		require.NoError(t, err)

		var out struct {
			Status string `json:"status"`
		}
		require.NoError(t, c.DoJSON(context.Background(), http.MethodGet, "/health", nil, &out))
		assert.Equal(t, "ok", out.Status)
	})

	t.Run("store down", func(t *testing.T) {
		ts := httptest.NewServer(router.NewRouter(router.Options{Repo: downRepo{memory.NewPetRepo()}}))
		defer ts.Close()

		c, err := httpclient.New(ts.URL, 0)
		require.NoError(t, err)

		err = c.DoJSON(context.Background(), http.MethodGet, "/health", nil, nil)
		assert.Equal(t, http.StatusServiceUnavailable, httpclient.StatusCode(err))
	})
}

func TestHTTP_Metrics(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	createPet(t, ts.URL, map[string]any{
		"name":   "Milo",
		"age":    1,
		"weight": 2,
		"group":  map[string]any{"scientific_name": "Felis catus"},
		"traits": []map[string]any{{"name": "calm"}},
	})
	doReq(t, ts.URL, "GET", "/pets/unknown", nil)

	st, body := doReq(t, ts.URL, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, st)

	text := string(body)
	assert.Contains(t, text, `pets_http_requests_total{method="GET",route="/pets/{petID}",status="404"} 1`)
	assert.Contains(t, text, `pets_name_resolutions_total{entity="group",outcome="created"} 1`)
	assert.Contains(t, text, `pets_name_resolutions_total{entity="trait",outcome="created"} 1`)
}

func TestHTTP_Swagger(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	st, body := doReq(t, ts.URL, "GET", "/swagger/doc.json", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Contains(t, string(body), `"/pets/{petID}"`)
}

type downRepo struct {
	*memory.PetRepo
}

func (downRepo) Ping(ctx context.Context) error {
	return errors.New("connection refused")
}

func createPet(t *testing.T, baseURL string, payload map[string]any) petBody {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}

	var resp petBody
	mustUnmarshal(t, body, &resp)
	if resp.ID == "" {
		t.Fatalf("create pet: missing id body=%s", string(body))
	}
	return resp
}

func traitNames(p petBody) []string {
	out := make([]string, 0, len(p.Traits))
	for _, tr := range p.Traits {
		out = append(out, tr.Name)
	}
	return out
}

func mustUnmarshal(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("json unmarshal: %v body=%s", err, string(body))
	}
}

func doReq(t *testing.T, baseURL, method, path string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	return send(t, method, baseURL+path, rdr)
}

func doRaw(t *testing.T, baseURL, method, path, raw string) (int, []byte) {
	t.Helper()
	return send(t, method, baseURL+path, strings.NewReader(raw))
}

func send(t *testing.T, method, url string, body io.Reader) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
