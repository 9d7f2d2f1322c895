package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given no overrides", t, func() {
		t.Setenv(configFileEnv, "")
		cfg, err := Load(context.Background())

		Convey("Then defaults apply", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":8080")
			So(cfg.BackendBaseURL, ShouldEqual, "http://localhost:8000")
			So(cfg.BackendTimeout, ShouldEqual, 8*time.Second)
			So(cfg.DefaultLocale, ShouldEqual, "ar")
			So(cfg.AuthMode, ShouldEqual, AuthModeFlag)
			So(cfg.AcceptLanguage, ShouldBeFalse)
			So(cfg.BackendLoginPath, ShouldEqual, "auth/login")
			So(cfg.BackendAdminLoginPath, ShouldEqual, "admin/login")
		})
	})

	Convey("Given environment overrides", t, func() {
		t.Setenv(configFileEnv, "")
		t.Setenv("BOOTEH_BACKEND_BASE_URL", "https://api.booteh.example/")
		t.Setenv("BOOTEH_BACKEND_TIMEOUT", "3s")
		t.Setenv("BOOTEH_DEV", "true")
		t.Setenv("BOOTEH_BACKEND_LOGIN_PATH", "/users/login/")
		cfg, err := Load(context.Background())

		Convey("Then env values win and the base URL is trimmed", func() {
			So(err, ShouldBeNil)
			So(cfg.BackendBaseURL, ShouldEqual, "https://api.booteh.example")
			So(cfg.BackendTimeout, ShouldEqual, 3*time.Second)
			So(cfg.Dev, ShouldBeTrue)
			So(cfg.BackendLoginPath, ShouldEqual, "users/login")
		})
	})

	Convey("Given a YAML file and an env override", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "booteh.yaml")
		err := os.WriteFile(path, []byte("addr: \":9090\"\ndefault_locale: en\n"), 0o600)
		So(err, ShouldBeNil)
		t.Setenv("BOOTEH_DEFAULT_LOCALE", "ar")

		cfg, err := Load(context.Background(), WithFile(path))

		Convey("Then the file overrides defaults and env overrides the file", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9090")
			So(cfg.DefaultLocale, ShouldEqual, "ar")
		})
	})

	Convey("Given token auth without a secret", t, func() {
		t.Setenv(configFileEnv, "")
		t.Setenv("BOOTEH_AUTH_MODE", "token")
		_, err := Load(context.Background())

		Convey("Then validation names the missing field", func() {
			var verr *ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Fields(), ShouldContain, "jwt_secret")
		})
	})
}

func TestValidateRejectsShortSessionKeys(t *testing.T) {
	Convey("Given a config with malformed session keys", t, func() {
		cfg := New()
		cfg.SessionHashKey = "short"
		cfg.SessionBlockKey = "seven77"
		err := cfg.Validate()

		Convey("Then both fields are reported", func() {
			var verr *ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Fields(), ShouldResemble, []string{"session_hash_key", "session_block_key"})
		})
	})
}
