// Package videoplatform talks to the hosted video pipeline: direct uploads,
// assets and their webhook events.
package videoplatform

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/example/video-platform/internal/platform/httpclient"
)

// Upload statuses and asset statuses as reported by the pipeline.
const (
	StatusWaiting   = "waiting"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusErrored   = "errored"
)

type Upload struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Status  string `json:"status"`
	AssetID string `json:"asset_id"`
}

type PlaybackID struct {
	ID     string `json:"id"`
	Policy string `json:"policy"`
}

type Asset struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	UploadID    string       `json:"upload_id"`
	Passthrough string       `json:"passthrough"`
	Duration    float64      `json:"duration"`
	PlaybackIDs []PlaybackID `json:"playback_ids"`
	Tracks      []Track      `json:"tracks"`
}

// PlaybackID returns the first playback id, or "" before one is assigned.
func (a Asset) PlaybackID() string {
	if len(a.PlaybackIDs) == 0 {
		return ""
	}
	return a.PlaybackIDs[0].ID
}

// DurationMs converts the asset duration in seconds to whole milliseconds.
func (a Asset) DurationMs() int64 {
	return int64(math.Round(a.Duration * 1000))
}

type Track struct {
	ID      string `json:"id"`
	AssetID string `json:"asset_id"`
	Type    string `json:"type"`
	Status  string `json:"status"`
}

type envelope[T any] struct {
	Data T `json:"data"`
}

// Client is the pipeline REST client.
type Client struct {
	http *httpclient.Client
	// CORSOrigin is sent with new uploads; "*" when empty.
	CORSOrigin string
}

// New builds a client authenticating with an access token pair.
func New(baseURL, tokenID, tokenSecret string, cfg httpclient.Config, opts ...httpclient.Option) *Client {
	opts = append([]httpclient.Option{httpclient.WithBasicAuth(tokenID, tokenSecret)}, opts...)
	return &Client{http: httpclient.New("video-platform", baseURL, cfg, opts...)}
}

type createUploadRequest struct {
	CORSOrigin       string           `json:"cors_origin"`
	NewAssetSettings newAssetSettings `json:"new_asset_settings"`
}

type newAssetSettings struct {
	Passthrough    string       `json:"passthrough"`
	PlaybackPolicy []string     `json:"playback_policy"`
	Inputs         []assetInput `json:"inputs"`
}

type assetInput struct {
	GeneratedSubtitles []subtitleSettings `json:"generated_subtitles"`
}

type subtitleSettings struct {
	LanguageCode string `json:"language_code"`
	Name         string `json:"name"`
}

// CreateUpload opens a direct upload whose asset carries passthrough (the
// uploader's user id) and gets English subtitles generated.
func (c *Client) CreateUpload(ctx context.Context, passthrough string) (Upload, error) {
	origin := c.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	body := createUploadRequest{
		CORSOrigin: origin,
		NewAssetSettings: newAssetSettings{
			Passthrough:    passthrough,
			PlaybackPolicy: []string{"public"},
			Inputs: []assetInput{{
				GeneratedSubtitles: []subtitleSettings{{LanguageCode: "en", Name: "English"}},
			}},
		},
	}
	out, err := httpclient.Do[envelope[Upload]](ctx, c.http, http.MethodPost, "/video/v1/uploads", body)
	if err != nil {
		return Upload{}, err
	}
	return out.Data, nil
}

func (c *Client) GetUpload(ctx context.Context, id string) (Upload, error) {
	out, err := httpclient.Do[envelope[Upload]](ctx, c.http, http.MethodGet, "/video/v1/uploads/"+url.PathEscape(id), nil)
	if err != nil {
		return Upload{}, err
	}
	return out.Data, nil
}

func (c *Client) GetAsset(ctx context.Context, id string) (Asset, error) {
	out, err := httpclient.Do[envelope[Asset]](ctx, c.http, http.MethodGet, "/video/v1/assets/"+url.PathEscape(id), nil)
	if err != nil {
		return Asset{}, err
	}
	return out.Data, nil
}

const imageBaseURL = "https://image.mux.com/"

// ThumbnailURL is the still image generated for a playback id.
func ThumbnailURL(playbackID string) string {
	return imageBaseURL + playbackID + "/thumbnail.jpg"
}

// PreviewURL is the animated preview generated for a playback id.
func PreviewURL(playbackID string) string {
	return imageBaseURL + playbackID + "/animated.gif"
}

// Webhook event types handled by the media processor.
const (
	EventAssetCreated      = "video.asset.created"
	EventAssetReady        = "video.asset.ready"
	EventAssetErrored      = "video.asset.errored"
	EventAssetDeleted      = "video.asset.deleted"
	EventAssetTrackReady   = "video.asset.track.ready"
	EventAssetTrackDeleted = "video.asset.track.deleted"
)

// Event is one webhook delivery. Data decodes as Asset for asset events and
// as Track for track events.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
	Data      json.RawMessage `json:"data"`
}

func (e Event) Asset() (Asset, error) {
	var a Asset
	err := json.Unmarshal(e.Data, &a)
	return a, err
}

func (e Event) Track() (Track, error) {
	var t Track
	err := json.Unmarshal(e.Data, &t)
	return t, err
}
