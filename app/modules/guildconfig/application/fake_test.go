package guildservice

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	guilddomain "github.com/parlor-gg/guildboard/app/modules/guildconfig/domain"
	guildstorage "github.com/parlor-gg/guildboard/app/modules/guildconfig/infrastructure/storage"
)

// fakeBackend is an in-memory Backend with per-method error injection and a
// call trace, so tests can assert both behavior and interaction order.
type fakeBackend struct {
	mu      sync.Mutex
	configs map[string]*guilddomain.ServerConfig
	admins  map[string]guilddomain.Administrator
	perms   map[string][]guilddomain.Permission

	calls []string

	getConfigErr  error
	saveConfigErr error
	listAdminsErr error
	listPermsErr  error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		configs: make(map[string]*guilddomain.ServerConfig),
		admins:  make(map[string]guilddomain.Administrator),
		perms:   make(map[string][]guilddomain.Permission),
	}
}

func (f *fakeBackend) record(call string) {
	f.calls = append(f.calls, call)
}

// cloneConfig decouples the stored record from the pointer handed to the
// service, the way a real backend would.
func cloneConfig(cfg *guilddomain.ServerConfig) *guilddomain.ServerConfig {
	raw, err := json.Marshal(cfg)
	if err != nil {
		panic(err)
	}
	var out guilddomain.ServerConfig
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return &out
}

func (f *fakeBackend) GetConfig(_ context.Context, guildID string) (*guilddomain.ServerConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetConfig")
	if f.getConfigErr != nil {
		return nil, f.getConfigErr
	}
	cfg, ok := f.configs[guildID]
	if !ok {
		return nil, guildstorage.ErrNotFound
	}
	return cloneConfig(cfg), nil
}

func (f *fakeBackend) SaveConfig(_ context.Context, cfg *guilddomain.ServerConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SaveConfig")
	if f.saveConfigErr != nil {
		return f.saveConfigErr
	}
	f.configs[cfg.GuildID] = cloneConfig(cfg)
	return nil
}

func (f *fakeBackend) ListConfigs(_ context.Context) ([]*guilddomain.ServerConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListConfigs")
	out := make([]*guilddomain.ServerConfig, 0, len(f.configs))
	for _, cfg := range f.configs {
		out = append(out, cloneConfig(cfg))
	}
	return out, nil
}

func (f *fakeBackend) ListAdministrators(_ context.Context) ([]guilddomain.Administrator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListAdministrators")
	if f.listAdminsErr != nil {
		return nil, f.listAdminsErr
	}
	out := make([]guilddomain.Administrator, 0, len(f.admins))
	for _, a := range f.admins {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeBackend) PutAdministrator(_ context.Context, admin guilddomain.Administrator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("PutAdministrator")
	f.admins[admin.UserID] = admin
	return nil
}

func (f *fakeBackend) DeleteAdministrator(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteAdministrator")
	if _, ok := f.admins[userID]; !ok {
		return guildstorage.ErrNotFound
	}
	delete(f.admins, userID)
	return nil
}

func (f *fakeBackend) ListPermissions(_ context.Context, guildID string) ([]guilddomain.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListPermissions")
	if f.listPermsErr != nil {
		return nil, f.listPermsErr
	}
	return append([]guilddomain.Permission(nil), f.perms[guildID]...), nil
}

func (f *fakeBackend) GrantPermission(_ context.Context, guildID string, perm guilddomain.Permission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GrantPermission")
	for _, p := range f.perms[guildID] {
		if p.UserID == perm.UserID {
			return nil
		}
	}
	f.perms[guildID] = append(f.perms[guildID], perm)
	return nil
}

func (f *fakeBackend) RevokePermission(_ context.Context, guildID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RevokePermission")
	perms := f.perms[guildID]
	for i, p := range perms {
		if p.UserID == userID {
			f.perms[guildID] = append(perms[:i], perms[i+1:]...)
			return nil
		}
	}
	return guildstorage.ErrNotFound
}

func (f *fakeBackend) Close() error {
	f.record("Close")
	return nil
}

// fakePublisher records published messages per topic.
type fakePublisher struct {
	mu        sync.Mutex
	published map[string][]*message.Message
	err       error
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{published: make(map[string][]*message.Message)}
}

func (f *fakePublisher) Publish(topic string, msgs ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published[topic] = append(f.published[topic], msgs...)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) topicCount(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published[topic])
}

// fakeLister is a scripted GuildLister.
type fakeLister struct {
	available bool
	guildIDs  []string
	err       error
}

func (f *fakeLister) Available() bool { return f.available }

func (f *fakeLister) GuildIDs(context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.guildIDs, nil
}
