package migrations

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	version    uint
	dirty      bool
	versionErr error
	upErr      error

	forced []int
	ups    int
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	return f.version, f.dirty, f.versionErr
}

func (f *fakeMigrator) Force(version int) error {
	f.forced = append(f.forced, version)
	f.dirty = false
	if version < 0 {
		f.versionErr = migrate.ErrNilVersion
		f.version = 0
	} else {
		f.version = uint(version)
	}
	return nil
}

func (f *fakeMigrator) Up() error {
	f.ups++
	if f.upErr != nil {
		return f.upErr
	}
	f.version, f.versionErr = 3, nil
	return nil
}

func TestApply_FreshDatabase(t *testing.T) {
	m := &fakeMigrator{versionErr: migrate.ErrNilVersion}

	require.NoError(t, apply(m, 3, true))
	require.Equal(t, 1, m.ups)
	require.Empty(t, m.forced)
}

func TestApply_UpToDate(t *testing.T) {
	m := &fakeMigrator{version: 3, upErr: migrate.ErrNoChange}

	require.NoError(t, apply(m, 3, true))
}

func TestApply_DirtyStateForcesPreviousVersion(t *testing.T) {
	m := &fakeMigrator{version: 2, dirty: true}

	require.NoError(t, apply(m, 3, true))
	require.Equal(t, []int{1}, m.forced)
	require.Equal(t, 1, m.ups)
}

func TestApply_DirtyFirstMigrationForcesNilVersion(t *testing.T) {
	m := &fakeMigrator{version: 1, dirty: true}

	require.NoError(t, apply(m, 3, true))
	require.Equal(t, []int{-1}, m.forced)
}

func TestApply_PendingWithoutAutoMigrate(t *testing.T) {
	m := &fakeMigrator{version: 2}

	err := apply(m, 3, false)
	require.ErrorIs(t, err, ErrPendingMigrations)

	var migErr *MigrationError
	require.True(t, errors.As(err, &migErr))
	require.Equal(t, "pending", migErr.Step)
	require.Zero(t, m.ups)
}

func TestApply_CurrentWithoutAutoMigrate(t *testing.T) {
	m := &fakeMigrator{version: 3}

	require.NoError(t, apply(m, 3, false))
	require.Zero(t, m.ups)
}

func TestApply_UpFailure(t *testing.T) {
	boom := errors.New("syntax error at or near")
	m := &fakeMigrator{version: 1, upErr: boom}

	err := apply(m, 3, true)
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), `"up"`)
}

func TestApply_VersionFailure(t *testing.T) {
	boom := errors.New("connection refused")
	m := &fakeMigrator{versionErr: boom}

	err := apply(m, 3, true)
	require.ErrorIs(t, err, boom)
}

func TestEmbeddedMigrations(t *testing.T) {
	src, err := iofs.New(MigrationFiles, ".")
	require.NoError(t, err)

	latest, err := latestVersion(src)
	require.NoError(t, err)
	require.Equal(t, uint(3), latest)

	entries, err := fs.ReadDir(MigrationFiles, ".")
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	require.Equal(t, 3, ups)
	require.Equal(t, ups, downs)
}
