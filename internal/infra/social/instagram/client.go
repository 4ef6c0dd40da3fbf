// Package instagram fetches public profile data through Instagram's
// web_profile_info endpoint using an authenticated browser session.
package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rizaldyaw/socmint/internal/domain/profile"
)

const (
	baseURL   = "https://www.instagram.com/api/v1/users/web_profile_info/"
	igAppID   = "936619743392459"
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36"
)

// Credentials are the browser session cookies required by the endpoint.
type Credentials struct {
	SessionID string
	DSUserID  string
	CSRFToken string
}

// Complete reports whether all required cookies are present.
func (c Credentials) Complete() bool {
	return c.SessionID != "" && c.DSUserID != "" && c.CSRFToken != ""
}

// Client implements profile.Fetcher against the Instagram web API.
type Client struct {
	http  *http.Client
	creds Credentials
	base  string
}

func NewClient(creds Credentials) *Client {
	return &Client{
		http:  &http.Client{Timeout: 15 * time.Second},
		creds: creds,
		base:  baseURL,
	}
}

// Fetch retrieves the profile and its most recent timeline posts.
func (c *Client) Fetch(ctx context.Context, username string) (*profile.Profile, error) {
	u := c.base + "?username=" + url.QueryEscape(username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.decorate(req, username)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("instagram request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("profile %q: %w", username, profile.ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("profile %q: %w (check session cookies)", username, profile.ErrUnauthorized)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("profile %q: %w", username, profile.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("instagram returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}

	var payload webProfileResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode profile response: %w", err)
	}
	user := payload.Data.User
	if user == nil || user.ID == "" {
		return nil, fmt.Errorf("profile %q: %w", username, profile.ErrNotFound)
	}

	p := &profile.Profile{
		UserID:     user.ID,
		Username:   username,
		FullName:   user.FullName,
		Biography:  user.Biography,
		Followers:  user.EdgeFollowedBy.Count,
		Following:  user.EdgeFollow.Count,
		IsPrivate:  user.IsPrivate,
		IsVerified: user.IsVerified,
		PicURL:     user.ProfilePicURLHD,
	}
	if p.PicURL == "" {
		p.PicURL = user.ProfilePicURL
	}

	for _, edge := range user.TimelineMedia.Edges {
		node := edge.Node
		caption := ""
		if len(node.CaptionEdges.Edges) > 0 {
			caption = node.CaptionEdges.Edges[0].Node.Text
		}
		p.Posts = append(p.Posts, profile.Post{
			ID:           node.ID,
			Caption:      caption,
			TakenAt:      time.Unix(node.TakenAtTimestamp, 0).UTC(),
			LikeCount:    node.EdgeLikedBy.Count,
			CommentCount: node.EdgeMediaToComment.Count,
			URL:          "https://www.instagram.com/p/" + node.Shortcode + "/",
		})
	}
	return p, nil
}

// decorate applies the headers and cookies a logged-in browser session sends.
func (c *Client) decorate(req *http.Request, username string) {
	req.Header.Set("accept", "*/*")
	req.Header.Set("accept-language", "en-US,en;q=0.9")
	req.Header.Set("referer", "https://www.instagram.com/"+username+"/")
	req.Header.Set("user-agent", userAgent)
	req.Header.Set("x-csrftoken", c.creds.CSRFToken)
	req.Header.Set("x-ig-app-id", igAppID)
	req.Header.Set("x-ig-user-id", c.creds.DSUserID)
	req.Header.Set("x-requested-with", "XMLHttpRequest")

	req.AddCookie(&http.Cookie{Name: "sessionid", Value: c.creds.SessionID})
	req.AddCookie(&http.Cookie{Name: "ds_user_id", Value: c.creds.DSUserID})
	req.AddCookie(&http.Cookie{Name: "csrftoken", Value: c.creds.CSRFToken})
}

type webProfileResponse struct {
	Data struct {
		User *webUser `json:"user"`
	} `json:"data"`
}

type webUser struct {
	ID              string `json:"id"`
	FullName        string `json:"full_name"`
	Biography       string `json:"biography"`
	IsPrivate       bool   `json:"is_private"`
	IsVerified      bool   `json:"is_verified"`
	ProfilePicURL   string `json:"profile_pic_url"`
	ProfilePicURLHD string `json:"profile_pic_url_hd"`
	EdgeFollowedBy  struct {
		Count int `json:"count"`
	} `json:"edge_followed_by"`
	EdgeFollow struct {
		Count int `json:"count"`
	} `json:"edge_follow"`
	TimelineMedia struct {
		Edges []struct {
			Node struct {
				ID               string `json:"id"`
				Shortcode        string `json:"shortcode"`
				TakenAtTimestamp int64  `json:"taken_at_timestamp"`
				CaptionEdges     struct {
					Edges []struct {
						Node struct {
							Text string `json:"text"`
						} `json:"node"`
					} `json:"edges"`
				} `json:"edge_media_to_caption"`
				EdgeLikedBy struct {
					Count int `json:"count"`
				} `json:"edge_liked_by"`
				EdgeMediaToComment struct {
					Count int `json:"count"`
				} `json:"edge_media_to_comment"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_owner_to_timeline_media"`
}
