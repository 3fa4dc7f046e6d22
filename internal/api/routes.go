package api

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"wgconf/internal/backups"
	"wgconf/internal/configstore"
	"wgconf/internal/keys"
	"wgconf/internal/logger"
	"wgconf/internal/profiles"
	"wgconf/internal/wgconfig"
)

var hiddenInterfaceKeys = []string{
	wgconfig.InterfacePrivateKey,
	wgconfig.InterfacePreUp,
	wgconfig.InterfacePostUp,
	wgconfig.InterfacePreDown,
	wgconfig.InterfacePostDown,
}

type Options struct {
	Release  string
	Password string

	// StaticDir is served at / when set.
	StaticDir string

	Profiles profiles.Options

	// AllowBackup enables the backup routes.
	AllowBackup bool

	// Defaults seeds the interface created by POST /api/wireguard/server/new.
	Defaults func(ctx context.Context) (configstore.InterfaceDefaults, error)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response: %v", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, configstore.ErrReadOnly), errors.Is(err, ErrBackupsDisabled):
		return http.StatusForbidden
	case errors.Is(err, wgconfig.ErrNotFound), errors.Is(err, backups.ErrBackupNotFound):
		return http.StatusNotFound
	case errors.Is(err, configstore.ErrLocked):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidBody),
		errors.Is(err, ErrInvalidClientRef),
		errors.Is(err, wgconfig.ErrInvalidValue),
		errors.Is(err, keys.ErrInvalidKeyEncoding),
		errors.Is(err, keys.ErrInvalidKeyLength),
		errors.Is(err, profiles.ErrNoPrivateKey):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		logger.Error("[%s %s] %v", r.Method, r.URL.Path, err)
	} else {
		logger.Debug("[%s %s] %v", r.Method, r.URL.Path, err)
	}

	writeJSON(w, status, ErrorDTO{Error: err.Error()})
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	return nil
}

// clientPublicKey decodes the hex client reference used in URLs, since a
// base64 public key may contain '/'.
func clientPublicKey(r *http.Request) (string, error) {
	publicKey, err := hex.DecodeString(r.PathValue("clientRef"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidClientRef, err)
	}

	return string(publicKey), nil
}

// ClientRef is the URL reference for a peer public key.
func ClientRef(publicKey string) string {
	return hex.EncodeToString([]byte(publicKey))
}

func authorized(password string, r *http.Request) bool {
	if password == "" {
		return true
	}

	key := r.URL.Query().Get("key")

	return subtle.ConstantTimeCompare([]byte(key), []byte(password)) == 1
}

func requireKey(password string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authorized(password, r) {
			writeError(w, r, ErrUnauthorized)
			return
		}

		next(w, r)
	}
}

func interfaceName(fileName string) string {
	return strings.TrimSuffix(fileName, ".conf")
}

func serverDTO(doc *wgconfig.Document) (*ServerDTO, error) {
	iface, err := doc.Interface()
	if err != nil {
		return nil, err
	}

	section, err := iface.JSON()
	if err != nil {
		return nil, err
	}

	for _, key := range hiddenInterfaceKeys {
		delete(section.Entries, key)
	}

	dto := &ServerDTO{
		SectionJSON: section,
		Interface:   interfaceName(doc.FileName()),
	}

	if privateKey, err := iface.PrivateKey(); err == nil {
		publicKey, err := keys.PublicKeyFor(privateKey)
		if err != nil {
			return nil, err
		}

		dto.PublicKey = &publicKey
	}

	return dto, nil
}

func clientDTO(peer *wgconfig.Peer) ClientDTO {
	publicKey, _ := peer.PublicKey()
	name, _ := peer.Name()
	allowedIPs, _ := peer.AllowedIPs()
	endpoint, _ := peer.Endpoint()
	keepalive, _ := peer.PersistentKeepalive()
	_, pskErr := peer.PresharedKey()
	_, privateKeyErr := peer.PrivateKey()

	return ClientDTO{
		Ref:                 ClientRef(publicKey),
		Name:                name,
		PublicKey:           publicKey,
		AllowedIPs:          allowedIPs,
		Endpoint:            endpoint,
		PersistentKeepalive: keepalive,
		HasPresharedKey:     pskErr == nil,
		DownloadableConfig:  privateKeyErr == nil,
	}
}

// updateClient finds the peer named by the URL and applies fn to it.
func updateClient(store *configstore.Store, r *http.Request, fn func(peer *wgconfig.Peer) error) error {
	publicKey, err := clientPublicKey(r)
	if err != nil {
		return err
	}

	return store.Update(func(doc *wgconfig.Document) error {
		peer, err := doc.Peer(publicKey)
		if err != nil {
			return err
		}

		return fn(peer)
	})
}

func RegisterRoutes(mux *http.ServeMux, store *configstore.Store, opts Options) {
	mux.HandleFunc("GET /api/release", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ReleaseDTO{Release: opts.Release})
	})

	mux.HandleFunc("GET /api/meta", func(w http.ResponseWriter, r *http.Request) {
		needsSetup := false

		_ = store.View(func(doc *wgconfig.Document) error {
			_, err := doc.Interface()
			needsSetup = err != nil
			return nil
		})

		writeJSON(w, http.StatusOK, MetaDTO{
			Auth:       opts.Password != "",
			NeedsSetup: needsSetup,
			ReadOnly:   store.ReadOnly(),
		})
	})

	mux.HandleFunc("GET /api/auth", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, AuthDTO{Success: authorized(opts.Password, r)})
	})

	handle := func(pattern string, handler http.HandlerFunc) {
		mux.HandleFunc(pattern, requireKey(opts.Password, handler))
	}

	ok := func(w http.ResponseWriter) {
		writeJSON(w, http.StatusOK, struct{}{})
	}

	handle("GET /api/wireguard/clients", func(w http.ResponseWriter, r *http.Request) {
		clients := []ClientDTO{}

		_ = store.View(func(doc *wgconfig.Document) error {
			for _, peer := range doc.Peers() {
				clients = append(clients, clientDTO(peer))
			}
			return nil
		})

		writeJSON(w, http.StatusOK, clients)
	})

	handle("GET /api/wireguard/server", func(w http.ResponseWriter, r *http.Request) {
		var dto *ServerDTO

		err := store.View(func(doc *wgconfig.Document) error {
			var err error
			dto, err = serverDTO(doc)
			return err
		})

		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, dto)
	})

	handle("GET /api/wireguard/save", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Commit(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}

		ok(w)
	})

	handle("GET /api/wireguard/reload", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Load(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}

		ok(w)
	})

	handle("POST /api/wireguard/server/regenerate", func(w http.ResponseWriter, r *http.Request) {
		err := store.Update(func(doc *wgconfig.Document) error {
			iface, err := doc.Interface()
			if err != nil {
				return err
			}

			privateKey, err := keys.GeneratePrivateKey()
			if err != nil {
				return err
			}

			return iface.SetPrivateKey(privateKey.String())
		})

		if err != nil {
			writeError(w, r, err)
			return
		}

		ok(w)
	})

	handle("PUT /api/wireguard/server/addresses", func(w http.ResponseWriter, r *http.Request) {
		var body AddressesRequestDTO

		err := decode(r, &body)

		if err == nil {
			err = store.Update(func(doc *wgconfig.Document) error {
				iface, err := doc.Interface()
				if err != nil {
					return err
				}

				return iface.SetAddresses(body.Addresses...)
			})
		}

		if err != nil {
			writeError(w, r, err)
			return
		}

		ok(w)
	})

	handle("PUT /api/wireguard/server/port", func(w http.ResponseWriter, r *http.Request) {
		var body PortRequestDTO

		err := decode(r, &body)

		if err == nil && (body.Port < 1 || body.Port > 65535) {
			err = fmt.Errorf("%w: port %d", wgconfig.ErrInvalidValue, body.Port)
		}

		if err == nil {
			err = store.Update(func(doc *wgconfig.Document) error {
				iface, err := doc.Interface()
				if err != nil {
					return err
				}

				return iface.SetListenPort(body.Port)
			})
		}

		if err != nil {
			writeError(w, r, err)
			return
		}

		ok(w)
	})

	handle("POST /api/wireguard/server/new", func(w http.ResponseWriter, r *http.Request) {
		var defaults configstore.InterfaceDefaults

		if opts.Defaults != nil {
			var err error

			if defaults, err = opts.Defaults(r.Context()); err != nil {
				writeError(w, r, err)
				return
			}
		}

		if err := store.Init(r.Context(), defaults, true); err != nil {
			writeError(w, r, err)
			return
		}

		ok(w)
	})

	handle("PUT /api/wireguard/client/{clientRef}/name", func(w http.ResponseWriter, r *http.Request) {
		var body NameRequestDTO

		err := decode(r, &body)

		if err == nil {
			err = updateClient(store, r, func(peer *wgconfig.Peer) error {
				logger.Info("Updating name for %s -> %q", peer.Label(), body.Name)
				return peer.SetName(body.Name)
			})
		}

		if err != nil {
			writeError(w, r, err)
			return
		}

		ok(w)
	})

	handle("PUT /api/wireguard/client/{clientRef}/addresses", func(w http.ResponseWriter, r *http.Request) {
		var body AddressesRequestDTO

		err := decode(r, &body)

		if err == nil {
			err = updateClient(store, r, func(peer *wgconfig.Peer) error {
				logger.Info("Updating AllowedIPs for %s -> %s", peer.Label(), strings.Join(body.Addresses, ", "))
				return peer.SetAllowedIPs(body.Addresses...)
			})
		}

		if err != nil {
			writeError(w, r, err)
			return
		}

		ok(w)
	})

	handle("PUT /api/wireguard/client/{clientRef}/publickey", func(w http.ResponseWriter, r *http.Request) {
		var body PublicKeyRequestDTO

		err := decode(r, &body)

		if err == nil {
			err = keys.Validate(body.PublicKey)
		}

		if err == nil {
			err = updateClient(store, r, func(peer *wgconfig.Peer) error {
				logger.Info("Updating PublicKey for %s -> %s", peer.Label(), body.PublicKey)
				return peer.SetPublicKey(body.PublicKey)
			})
		}

		if err != nil {
			writeError(w, r, err)
			return
		}

		ok(w)
	})

	handle("PUT /api/wireguard/client/{clientRef}/presharedkey", func(w http.ResponseWriter, r *http.Request) {
		var body PresharedKeyRequestDTO

		err := decode(r, &body)

		if err == nil {
			err = keys.Validate(body.PresharedKey)
		}

		if err == nil {
			err = updateClient(store, r, func(peer *wgconfig.Peer) error {
				logger.Info("Updating PresharedKey for %s", peer.Label())
				return peer.SetPresharedKey(body.PresharedKey)
			})
		}

		if err != nil {
			writeError(w, r, err)
			return
		}

		ok(w)
	})

	handle("GET /api/wireguard/client/{clientRef}/configuration", func(w http.ResponseWriter, r *http.Request) {
		publicKey, err := clientPublicKey(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var config, name string

		err = store.View(func(doc *wgconfig.Document) error {
			iface, err := doc.Interface()
			if err != nil {
				return err
			}

			peer, err := doc.Peer(publicKey)
			if err != nil {
				return err
			}

			name = peer.Label()
			config, err = profiles.ClientConfig(iface, peer, opts.Profiles)
			return err
		})

		if err != nil {
			writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", profiles.FileName(name)))
		_, _ = w.Write([]byte(config))
	})

	handleBackup := func(pattern string, handler http.HandlerFunc) {
		handle(pattern, func(w http.ResponseWriter, r *http.Request) {
			if !opts.AllowBackup {
				writeError(w, r, ErrBackupsDisabled)
				return
			}

			handler(w, r)
		})
	}

	handleBackup("GET /api/wireguard/backups", func(w http.ResponseWriter, r *http.Request) {
		list, err := store.Backups()
		if err != nil {
			writeError(w, r, err)
			return
		}

		dtos := make([]BackupDTO, 0, len(list))

		for _, backup := range list {
			dtos = append(dtos, BackupDTO{
				ID:        backup.ID,
				Path:      backup.Path,
				Size:      backup.Size,
				SHA256:    backup.SHA256,
				CreatedAt: backup.CreatedAt,
			})
		}

		writeJSON(w, http.StatusOK, dtos)
	})

	handleBackup("POST /api/wireguard/backup", func(w http.ResponseWriter, r *http.Request) {
		if _, err := store.Backup(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}

		ok(w)
	})

	handleBackup("POST /api/wireguard/revert", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Revert(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}

		ok(w)
	})
}
