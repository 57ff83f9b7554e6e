package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendSMSDryRunSkipsHTTP(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClientWithOptions("key", "", true)
	c.BaseURL = srv.URL
	if _, err := c.SendSMS(context.Background(), "0555111222", "code"); err != nil {
		t.Fatalf("dry-run send: %v", err)
	}
	if called {
		t.Error("dry-run should not call the API")
	}
}

func TestSendSMSPostsForm(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		got = map[string]string{
			"apiKey":    r.PostForm.Get("apiKey"),
			"recipient": r.PostForm.Get("recipient"),
			"text":      r.PostForm.Get("text"),
			"from":      r.PostForm.Get("from"),
		}
		w.Write([]byte(`{"code":0,"data":{"messageId":"42"}}`))
	}))
	defer srv.Close()

	c := NewClientWithOptions("key", "Regauth", false)
	c.BaseURL = srv.URL
	resp, err := c.SendSMS(context.Background(), "0555111222", "Your code: 123456")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if resp.Data.MessageID != "42" {
		t.Errorf("message id = %q, want 42", resp.Data.MessageID)
	}
	want := map[string]string{"apiKey": "key", "recipient": "0555111222", "text": "Your code: 123456", "from": "Regauth"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("form %s = %q, want %q", k, got[k], v)
		}
	}
}

func TestSendSMSProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":1,"message":"bad recipient"}`))
	}))
	defer srv.Close()

	c := NewClientWithOptions("key", "", false)
	c.BaseURL = srv.URL
	if _, err := c.SendSMS(context.Background(), "x", "y"); err == nil {
		t.Fatal("expected error for non-zero provider code")
	}
}
