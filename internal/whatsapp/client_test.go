package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"whatsapp-engine/internal/config"
	"whatsapp-engine/internal/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(&config.Config{
		GraphAPIURL:               srv.URL,
		GraphAPIVersion:           "v19.0",
		WhatsAppToken:             "token",
		PhoneNumberID:             "PHONE",
		WhatsAppBusinessAccountID: "WABA",
	})
}

func TestSendText(t *testing.T) {
	var got GenericMessage
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v19.0/PHONE/messages", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"messages":[{"id":"wamid.ABC"}]}`))
	})

	id, err := c.SendText(context.Background(), "254700000001", "hello")

	require.NoError(t, err)
	assert.Equal(t, "wamid.ABC", id)
	assert.Equal(t, "text", got.Type)
	require.NotNil(t, got.Text)
	assert.Equal(t, "hello", got.Text.Body)
}

func TestSendRawMessage_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Re-engagement message"}}`))
	})

	_, err := c.SendText(context.Background(), "x", "hello")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Re-engagement")
}

func TestSendRawMessage_MissingID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"messages":[]}`))
	})

	_, err := c.SendText(context.Background(), "x", "hello")
	assert.ErrorIs(t, err, ErrNoMessageID)
}

func TestTemplateObject_BodyAndCarousel(t *testing.T) {
	b := template.Binding{
		Name:     "spring_sale",
		Language: "en_US",
		Values: template.Values{
			Body:  []string{"Amina"},
			Cards: [][]string{{"Shoes", "20%"}, {}},
		},
		Params: template.Params{Body: []string{"Amina"}},
	}

	obj := TemplateObject(b)

	require.Len(t, obj.Components, 2)
	assert.Equal(t, "body", obj.Components[0].Type)
	assert.Equal(t, []ParameterObj{{Type: "text", Text: "Amina"}}, obj.Components[0].Parameters)

	carousel := obj.Components[1]
	assert.Equal(t, "carousel", carousel.Type)
	require.Len(t, carousel.Cards, 2)
	assert.Equal(t, 0, carousel.Cards[0].CardIndex)
	require.Len(t, carousel.Cards[0].Components, 1)
	assert.Equal(t, "20%", carousel.Cards[0].Components[0].Parameters[1].Text)
	assert.Equal(t, 1, carousel.Cards[1].CardIndex)
	assert.Empty(t, carousel.Cards[1].Components)
}

func TestTemplateObject_TextHeaderGetsItsOwnComponent(t *testing.T) {
	def := template.Definition{Name: "order_ready", Language: "en_US", Components: []template.Component{
		{Type: template.ComponentHeader, Format: "TEXT", Text: "Hi {{1}}"},
		{Type: template.ComponentBody, Text: "Order {{1}} ships {{2}}"},
		{Type: template.ComponentFooter, Text: "Reply STOP to opt out"},
	}}
	b, err := template.Bind(def, template.Extract(def).Set(1, "A").Set(2, "B"))
	require.NoError(t, err)

	obj := TemplateObject(b)

	require.Len(t, obj.Components, 2)
	assert.Equal(t, "header", obj.Components[0].Type)
	assert.Equal(t, []ParameterObj{{Type: "text", Text: "A"}}, obj.Components[0].Parameters)
	assert.Equal(t, "body", obj.Components[1].Type)
	assert.Equal(t, []ParameterObj{{Type: "text", Text: "A"}, {Type: "text", Text: "B"}}, obj.Components[1].Parameters)
}

func TestTemplateObject_MediaHeaderTakesNoTextParams(t *testing.T) {
	def := template.Definition{Name: "promo", Language: "en_US", Components: []template.Component{
		{Type: template.ComponentHeader, Format: "IMAGE"},
		{Type: template.ComponentBody, Text: "Deal for {{1}}"},
	}}
	b, err := template.Bind(def, template.Extract(def).Set(1, "Amina"))
	require.NoError(t, err)

	obj := TemplateObject(b)

	require.Len(t, obj.Components, 1)
	assert.Equal(t, "body", obj.Components[0].Type)
}

func TestTemplateObject_NoValues(t *testing.T) {
	obj := TemplateObject(template.Binding{Name: "hello_world", Language: "en_US"})
	assert.Empty(t, obj.Components)

	raw, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"hello_world","language":{"code":"en_US"}}`, string(raw))
}

func TestGetTemplates_FollowsPaging(t *testing.T) {
	var srvURL string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v19.0/WABA/message_templates", r.URL.Path)
		if r.URL.Query().Get("after") == "" {
			w.Write([]byte(`{"data":[{"id":"1","name":"a","language":"en_US","category":"UTILITY","status":"APPROVED","components":[{"type":"BODY","text":"Hi {{1}}"}]}],"paging":{"next":"` + srvURL + `/v19.0/WABA/message_templates?after=x"}}`))
			return
		}
		w.Write([]byte(`{"data":[{"id":"2","name":"b","language":"en_US","category":"MARKETING","status":"PENDING","components":[]}]}`))
	})
	srvURL = c.Config.GraphAPIURL

	records, err := c.GetTemplates(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].Name)
	assert.JSONEq(t, `[{"type":"BODY","text":"Hi {{1}}"}]`, string(records[0].Components))
	assert.Equal(t, "PENDING", records[1].Status)
}

func TestDownloadMedia(t *testing.T) {
	var srvURL string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v19.0/MEDIA1":
			w.Write([]byte(`{"id":"MEDIA1","url":"` + srvURL + `/files/MEDIA1","mime_type":"image/jpeg"}`))
		case "/files/MEDIA1":
			assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
			w.Write([]byte("jpegbytes"))
		default:
			http.NotFound(w, r)
		}
	})
	srvURL = c.Config.GraphAPIURL

	body, mime, err := c.DownloadMedia(context.Background(), "MEDIA1")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "jpegbytes", string(data))
	assert.Equal(t, "image/jpeg", mime)

	_, _, err = c.DownloadMedia(context.Background(), "MISSING")
	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
}
