package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListPapersBuildsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/library/" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("page_size") != "25" {
			t.Fatalf("unexpected paging: %s", r.URL.RawQuery)
		}
		if q.Get("search") != "attention" {
			t.Fatalf("unexpected search: %q", q.Get("search"))
		}
		if q.Get("category") != "cs.CL" || q.Get("status") != "completed" {
			t.Fatalf("unexpected filters: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total":1,"items":[{"id":"p1","title":"Attention Is All You Need","status":"completed"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server, "tok")
	lib, err := client.ListPapers(context.Background(), ListOptions{
		Page:     2,
		PageSize: 25,
		Search:   "attention",
		Category: "cs.CL",
		Status:   StatusCompleted,
	})
	if err != nil {
		t.Fatalf("ListPapers() error = %v", err)
	}
	if lib.Total != 1 || len(lib.Items) != 1 {
		t.Fatalf("unexpected library: %+v", lib)
	}
	if lib.Items[0].Title != "Attention Is All You Need" {
		t.Fatalf("unexpected title: %s", lib.Items[0].Title)
	}
}

func TestListPapersOmitsZeroOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Fatalf("expected empty query, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total":0,"items":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server, "tok")
	if _, err := client.ListPapers(context.Background(), ListOptions{}); err != nil {
		t.Fatalf("ListPapers() error = %v", err)
	}
}

func TestDeletePaperEscapesID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if r.URL.EscapedPath() != "/api/v1/library/p%2F1" {
			t.Fatalf("unexpected path: %s", r.URL.EscapedPath())
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"deleted"}`))
	}))
	defer server.Close()

	client := newTestClient(server, "tok")
	if err := client.DeletePaper(context.Background(), "p/1"); err != nil {
		t.Fatalf("DeletePaper() error = %v", err)
	}
}

func TestCategoriesUnwrapsList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/library/categories" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"categories":["cs.CL","cs.LG"]}`))
	}))
	defer server.Close()

	client := newTestClient(server, "tok")
	got, err := client.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(got) != 2 || got[0] != "cs.CL" || got[1] != "cs.LG" {
		t.Fatalf("unexpected categories: %#v", got)
	}
}

func TestLibraryTagsDecodeCounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/library/tags" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"transformers","count":4},{"name":"speech","count":1}]`))
	}))
	defer server.Close()

	client := newTestClient(server, "tok")
	got, err := client.LibraryTags(context.Background())
	if err != nil {
		t.Fatalf("LibraryTags() error = %v", err)
	}
	if len(got) != 2 || got[0].Name != "transformers" || got[0].Count != 4 {
		t.Fatalf("unexpected tags: %#v", got)
	}
}
