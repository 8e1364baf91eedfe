package rdapclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestDefaultHTTPClient_SameHostRedirectAllowed checks that a redirect
// to a different path on the same host is followed transparently.
func TestDefaultHTTPClient_SameHostRedirectAllowed(t *testing.T) {
	var target string
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusFound)
	})
	mux.HandleFunc("/end", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s := httptest.NewServer(mux)
	defer s.Close()
	target = s.URL + "/end"

	hc := defaultHTTPClient()
	resp, err := hc.Get(s.URL + "/start")
	if err != nil {
		t.Fatalf("unexpected error following same-host redirect: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after redirect, got %d", resp.StatusCode)
	}
}

// TestDefaultHTTPClient_CrossOriginRedirectBlockedUnlessRDAPJSON
// checks that a cross-origin redirect is refused unless the response
// that triggered it already identifies as RDAP JSON.
func TestDefaultHTTPClient_CrossOriginRedirectBlockedUnlessRDAPJSON(t *testing.T) {
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer other.Close()

	plain := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, other.URL+"/elsewhere", http.StatusFound)
	}))
	defer plain.Close()

	hc := defaultHTTPClient()
	_, err := hc.Get(plain.URL + "/start")
	if err == nil {
		t.Fatalf("expected cross-origin redirect without RDAP content type to be refused")
	}

	rdapRedirector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rdap+json")
		http.Redirect(w, r, other.URL+"/elsewhere", http.StatusFound)
	}))
	defer rdapRedirector.Close()

	resp, err := hc.Get(rdapRedirector.URL + "/start")
	if err != nil {
		t.Fatalf("expected cross-origin redirect from an RDAP JSON response to be allowed, got err: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after cross-origin RDAP redirect, got %d", resp.StatusCode)
	}
}

// TestDefaultHTTPClient_RedirectHopCap checks the client gives up
// after maxRedirectHops same-host redirects instead of looping
// forever.
func TestDefaultHTTPClient_RedirectHopCap(t *testing.T) {
	var mux http.HandlerFunc
	mux = func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.String(), http.StatusFound)
	}
	s := httptest.NewServer(mux)
	defer s.Close()

	hc := defaultHTTPClient()
	_, err := hc.Get(s.URL + "/loop")
	if err == nil {
		t.Fatalf("expected redirect loop to be stopped by the hop cap")
	}
}
