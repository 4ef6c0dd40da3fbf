package instagram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rizaldyaw/socmint/internal/domain/profile"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Credentials{SessionID: "sid", DSUserID: "123", CSRFToken: "tok"})
	c.base = srv.URL + "/"
	return c
}

const profilePayload = `{
  "data": {
    "user": {
      "id": "42",
      "full_name": "Alice Example",
      "biography": "hiking and coffee",
      "is_private": false,
      "is_verified": true,
      "profile_pic_url": "https://cdn.example/pic.jpg",
      "edge_followed_by": {"count": 150},
      "edge_follow": {"count": 75},
      "edge_owner_to_timeline_media": {
        "edges": [
          {
            "node": {
              "id": "p1",
              "shortcode": "AbC123",
              "taken_at_timestamp": 1700000000,
              "edge_media_to_caption": {"edges": [{"node": {"text": "sunrise at the summit"}}]},
              "edge_liked_by": {"count": 12},
              "edge_media_to_comment": {"count": 3}
            }
          }
        ]
      }
    }
  }
}`

func TestFetchMapsProfile(t *testing.T) {
	var gotReq *http.Request
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Write([]byte(profilePayload))
	})

	p, err := c.Fetch(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if p.UserID != "42" || p.Username != "alice" || p.FullName != "Alice Example" {
		t.Errorf("identity fields = %q %q %q", p.UserID, p.Username, p.FullName)
	}
	if p.Followers != 150 || p.Following != 75 || !p.IsVerified {
		t.Errorf("counts = %d/%d verified=%v", p.Followers, p.Following, p.IsVerified)
	}
	if p.PicURL != "https://cdn.example/pic.jpg" {
		t.Errorf("PicURL = %q, HD url absent should fall back", p.PicURL)
	}
	if len(p.Posts) != 1 {
		t.Fatalf("posts = %d, want 1", len(p.Posts))
	}
	post := p.Posts[0]
	if post.Caption != "sunrise at the summit" || post.LikeCount != 12 || post.CommentCount != 3 {
		t.Errorf("post = %+v", post)
	}
	if post.URL != "https://www.instagram.com/p/AbC123/" {
		t.Errorf("post URL = %q", post.URL)
	}
	if post.TakenAt.Unix() != 1700000000 {
		t.Errorf("TakenAt = %v", post.TakenAt)
	}

	if gotReq.URL.Query().Get("username") != "alice" {
		t.Errorf("username query = %q", gotReq.URL.Query().Get("username"))
	}
	if gotReq.Header.Get("x-ig-app-id") != igAppID {
		t.Errorf("x-ig-app-id = %q", gotReq.Header.Get("x-ig-app-id"))
	}
	if cookie, err := gotReq.Cookie("sessionid"); err != nil || cookie.Value != "sid" {
		t.Errorf("sessionid cookie = %v, %v", cookie, err)
	}
}

func TestFetchStatusErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, profile.ErrNotFound},
		{"unauthorized", http.StatusUnauthorized, profile.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, profile.ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, profile.ErrRateLimited},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			})
			_, err := c.Fetch(context.Background(), "alice")
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestFetchEmptyUserIsNotFound(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"user":null}}`))
	})
	_, err := c.Fetch(context.Background(), "ghost")
	if !errors.Is(err, profile.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCredentialsComplete(t *testing.T) {
	if (Credentials{SessionID: "s", DSUserID: "d", CSRFToken: "c"}).Complete() != true {
		t.Error("full credentials reported incomplete")
	}
	if (Credentials{SessionID: "s", DSUserID: "d"}).Complete() {
		t.Error("missing csrftoken reported complete")
	}
}
