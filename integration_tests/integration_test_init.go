package integrationtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"

	"github.com/alicebob/miniredis/v2"
	"github.com/fakhrymubarak/character-challenge-api/internal/handler"
	"github.com/fakhrymubarak/character-challenge-api/internal/repository"
	"github.com/fakhrymubarak/character-challenge-api/internal/service"
)

func createMockRedisServer() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	return mr
}

// fakeUpstream mimics the character API. The first path segment selects the
// scenario: ok (two pages), empty, missing (404), gone (plain 404), partial (incomplete entry),
// rejected (400), broken (500).
type fakeUpstream struct {
	*httptest.Server
	requests atomic.Int64
}

func newFakeUpstream() *fakeUpstream {
	f := &fakeUpstream{}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

func (f *fakeUpstream) baseURL(scenario string) string {
	return f.URL + "/" + scenario + "/api/character"
}

func (f *fakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	w.Header().Set("Content-Type", "application/json")
	scenario := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)[0]
	q := r.URL.Query()
	if q.Get("status") != "unknown" || q.Get("species") != "alien" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"unexpected filter"}`)
		return
	}

	switch scenario {
	case "ok":
		if q.Get("page") == "2" {
			fmt.Fprint(w, `{"info":{"count":3,"pages":2,"next":null,"prev":null},"results":[`+
				character(3, "Arthricia", "e1", "e2", "e3")+`]}`)
			return
		}
		next := f.baseURL("ok") + "?page=2&species=alien&status=unknown"
		fmt.Fprintf(w, `{"info":{"count":3,"pages":2,"next":%q,"prev":null},"results":[%s,%s]}`,
			next, character(1, "Zeep Xanflorp", "e1", "e2"), character(2, "Glootie", "e1"))
	case "empty":
		fmt.Fprint(w, `{"info":{"count":1,"pages":1,"next":null,"prev":null},"results":[`+
			character(9, "Gazorpian", "e1")+`]}`)
	case "missing":
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"There is nothing here"}`)
	case "gone":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "404 page not found\n")
	case "partial":
		fmt.Fprint(w, `{"info":{"count":1,"pages":1,"next":null,"prev":null},"results":[{"id":4,"name":"Squanchy"}]}`)
	case "rejected":
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"Hey! you must provide a valid filter"}`)
	default:
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"internal"}`)
	}
}

func character(id int, name string, episodes ...string) string {
	quoted := make([]string, len(episodes))
	for i, e := range episodes {
		quoted[i] = fmt.Sprintf("%q", "https://rickandmortyapi.com/api/episode/"+e)
	}
	return fmt.Sprintf(`{"id":%d,"name":%q,"status":"unknown","species":"Alien","type":"","gender":"Male",`+
		`"origin":{"name":"Gazorpazorp","url":""},"location":{"name":"Citadel of Ricks","url":""},`+
		`"image":"https://rickandmortyapi.com/api/character/avatar/%d.jpeg","episode":[%s]}`,
		id, name, id, strings.Join(quoted, ","))
}

// newAPIServer wires the full stack against baseURL, the way main does.
func newAPIServer(baseURL string) *httptest.Server {
	svc := &service.CharacterService{
		CharacterRepo: repository.NewCharacterRepository(),
		BaseURL:       baseURL,
		MaxPages:      10,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/challengeapi", handler.NewCharacterHandler(svc).HandleChallenge)
	return httptest.NewServer(mux)
}
