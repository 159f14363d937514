package database

import (
	"context"
	"testing"
	"time"

	"whatsapp-engine/internal/config"
	"whatsapp-engine/internal/message"
	"whatsapp-engine/internal/models"
	"whatsapp-engine/internal/window"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var t0 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func TestMessageStore_SaveAndList(t *testing.T) {
	ctx := context.Background()
	store := NewMessageStore(newTestDB(t))

	second := message.Record{ID: "wamid.2", Direction: message.Outbound, ContactID: "c1", Content: "hi", Timestamp: t0.Add(time.Minute), Status: message.StatusSent}
	first := message.Record{
		ID: "wamid.1", Direction: message.Inbound, ContactID: "c1", DeclaredType: "image",
		Media: &message.MediaRef{URL: "/api/media/m1/photo.jpg", FileExtension: "jpg"}, Timestamp: t0, Status: message.StatusReceived,
	}
	require.NoError(t, store.Save(ctx, second))
	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, first), "redelivery is ignored")
	require.NoError(t, store.Save(ctx, message.Record{ID: "wamid.3", ContactID: "c2", Timestamp: t0}))

	thread, err := store.ListByContact(ctx, "c1", 0)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "wamid.1", thread[0].ID)
	assert.Equal(t, "wamid.2", thread[1].ID)
	require.NotNil(t, thread[0].Media)
	assert.Equal(t, "jpg", thread[0].Media.FileExtension)
	assert.Nil(t, thread[1].Media)

	latest, err := store.ListByContact(ctx, "c1", 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "wamid.2", latest[0].ID)
}

func TestMessageStore_UpdateStatusNeverMovesBackward(t *testing.T) {
	ctx := context.Background()
	store := NewMessageStore(newTestDB(t))
	require.NoError(t, store.Save(ctx, message.Record{ID: "m", Direction: message.Outbound, ContactID: "c", Timestamp: t0, Status: message.StatusSent}))

	ok, err := store.UpdateStatus(ctx, "m", message.StatusRead)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.UpdateStatus(ctx, "m", message.StatusDelivered)
	require.NoError(t, err)
	assert.False(t, ok)

	r, err := store.Get(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, message.StatusRead, r.Status)

	ok, err = store.UpdateStatus(ctx, "unknown", message.StatusRead)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Get(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMessageStore_Confirm(t *testing.T) {
	ctx := context.Background()
	store := NewMessageStore(newTestDB(t))
	require.NoError(t, store.Save(ctx, message.Record{ID: "job-1", Direction: message.Outbound, ContactID: "c", Timestamp: t0, Status: message.StatusPending}))

	require.NoError(t, store.Confirm(ctx, "job-1", "wamid.X"))

	r, err := store.Get(ctx, "wamid.X")
	require.NoError(t, err)
	assert.Equal(t, message.StatusSent, r.Status)
	_, err = store.Get(ctx, "job-1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Confirm(ctx, "job-1", "wamid.Y"), ErrNotFound)
}

func TestContactDirectory_EnsureKeepsExistingName(t *testing.T) {
	ctx := context.Background()
	dir := NewContactDirectory(newTestDB(t))

	require.NoError(t, dir.Ensure(ctx, "254700000001", ""))
	name, err := dir.DisplayName(ctx, "254700000001")
	require.NoError(t, err)
	assert.Empty(t, name)

	require.NoError(t, dir.Ensure(ctx, "254700000001", "Amina"))
	require.NoError(t, dir.Ensure(ctx, "254700000001", "Someone Else"))
	name, err = dir.DisplayName(ctx, "254700000001")
	require.NoError(t, err)
	assert.Equal(t, "Amina", name)

	name, err = dir.DisplayName(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestContactDirectory_TouchLastInboundIsMonotonic(t *testing.T) {
	ctx := context.Background()
	dir := NewContactDirectory(newTestDB(t))
	require.NoError(t, dir.Ensure(ctx, "c", ""))

	moved, err := dir.TouchLastInbound(ctx, "c", t0)
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = dir.TouchLastInbound(ctx, "c", t0.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, moved)

	c, err := dir.Get(ctx, "c")
	require.NoError(t, err)
	require.NotNil(t, c.LastInboundAt)
	assert.True(t, c.LastInboundAt.Equal(t0))
}

func TestContactDirectory_CRUD(t *testing.T) {
	ctx := context.Background()
	dir := NewContactDirectory(newTestDB(t))

	require.NoError(t, dir.Upsert(ctx, models.Contact{WaID: "a", Name: "A", Tags: "vip"}))
	require.NoError(t, dir.Upsert(ctx, models.Contact{WaID: "a", Name: "A2", Tags: "vip,new"}))

	c, err := dir.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A2", c.Name)
	assert.Equal(t, "vip,new", c.Tags)

	require.NoError(t, dir.Update(ctx, "a", "A3", ""))
	assert.ErrorIs(t, dir.Update(ctx, "nobody", "x", ""), ErrNotFound)

	list, err := dir.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, dir.Delete(ctx, "a"))
	assert.ErrorIs(t, dir.Delete(ctx, "a"), ErrNotFound)
}

func TestTemplateCatalog_ServesApprovedOnly(t *testing.T) {
	ctx := context.Background()
	catalog := NewTemplateCatalog(newTestDB(t))

	require.NoError(t, catalog.Upsert(ctx, []models.Template{
		{ID: "1", Name: "order_update", Language: "en_US", Category: "utility", Status: "APPROVED",
			Components: `[{"type":"body","text":"Hi {{1}}, order {{2}} shipped"}]`},
		{ID: "2", Name: "promo", Language: "en_US", Category: "MARKETING", Status: "PENDING",
			Components: `[{"type":"BODY","text":"Sale"}]`},
		{ID: "3", Name: "broken", Language: "en_US", Category: "UTILITY", Status: "APPROVED",
			Components: `not json`},
	}))

	defs, err := catalog.Approved(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "order_update", defs[0].Name)

	def, err := catalog.FindApproved(ctx, "order_update", "")
	require.NoError(t, err)
	body, ok := def.Body()
	require.True(t, ok)
	assert.Equal(t, "Hi {{1}}, order {{2}} shipped", body.Text)

	_, err = catalog.FindApproved(ctx, "promo", "en_US")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, catalog.Upsert(ctx, []models.Template{
		{ID: "2", Name: "promo", Language: "en_US", Category: "MARKETING", Status: "APPROVED",
			Components: `[{"type":"BODY","text":"Sale"}]`},
	}))
	_, err = catalog.FindApproved(ctx, "promo", "en_US")
	assert.NoError(t, err)
}

func TestWindowSource_FeedsRefresher(t *testing.T) {
	ctx := context.Background()
	dir := NewContactDirectory(newTestDB(t))
	require.NoError(t, dir.Ensure(ctx, "open", ""))
	require.NoError(t, dir.Ensure(ctx, "never", ""))
	_, err := dir.TouchLastInbound(ctx, "open", t0)
	require.NoError(t, err)

	tracker := window.NewTracker()
	n, err := window.NewRefresher(tracker, NewWindowSource(dir), "").Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.True(t, tracker.Window(window.WhatsApp("open")).IsOpen(t0.Add(time.Hour)))
	assert.False(t, tracker.Window(window.WhatsApp("never")).IsOpen(t0))
}

func TestSyncConfig(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.SystemSetting{Key: "WHATSAPP_TOKEN", Value: "stored"}).Error)

	cfg := &config.Config{WhatsAppToken: "env", VerifyToken: "verify"}
	require.NoError(t, SyncConfig(db, cfg))

	assert.Equal(t, "stored", cfg.WhatsAppToken)
	assert.Equal(t, "verify", cfg.VerifyToken)

	var seeded models.SystemSetting
	require.NoError(t, db.Where("key = ?", "VERIFY_TOKEN").First(&seeded).Error)
	assert.Equal(t, "verify", seeded.Value)
}

func TestCopy_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	src, dst := newTestDB(t), newTestDB(t)

	contacts := NewContactDirectory(src)
	require.NoError(t, contacts.Ensure(ctx, "15550001", "Ana"))
	store := NewMessageStore(src)
	for i, id := range []string{"wamid.1", "wamid.2", "wamid.3"} {
		require.NoError(t, store.Save(ctx, message.Record{ID: id, ContactID: "15550001", Timestamp: t0.Add(time.Duration(i) * time.Minute)}))
	}
	require.NoError(t, NewTemplateCatalog(src).Upsert(ctx, []models.Template{
		{ID: "1", Name: "promo", Language: "en_US", Status: "APPROVED", Components: `[]`},
	}))

	result, err := Copy(ctx, src, dst)
	require.NoError(t, err)
	assert.Equal(t, CopyResult{"contacts": 1, "messages": 3, "templates": 1, "system_settings": 0}, result)

	_, err = Copy(ctx, src, dst)
	require.NoError(t, err, "re-running skips rows already copied")

	thread, err := NewMessageStore(dst).ListByContact(ctx, "15550001", 0)
	require.NoError(t, err)
	assert.Len(t, thread, 3)
	name, err := NewContactDirectory(dst).DisplayName(ctx, "15550001")
	require.NoError(t, err)
	assert.Equal(t, "Ana", name)
}
