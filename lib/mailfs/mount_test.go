// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package mailfs

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/kivinge/kivinge/lib/clock"
)

// fuseAvailable checks whether a real FUSE mount can work here: the
// device must be accessible and an unprivileged mount helper present
// (containers often ship /dev/fuse without fusermount). Tests that
// need a real mount call this and skip otherwise.
func fuseAvailable(t *testing.T) {
	t.Helper()
	if _, err := os.Stat("/dev/fuse"); err != nil {
		t.Skip("skipping: /dev/fuse not available")
	}
	for _, helper := range []string{"fusermount3", "fusermount"} {
		if _, err := exec.LookPath(helper); err == nil {
			return
		}
	}
	t.Skip("skipping: no fusermount helper in PATH")
}

// testMount mounts the filesystem over the given client with a
// deterministic clock and returns the mountpoint. The mount is
// unmounted when the test ends.
func testMount(t *testing.T, client Client) string {
	t.Helper()
	fuseAvailable(t)

	mountpoint := filepath.Join(t.TempDir(), "mount")

	server, err := Mount(Options{
		Mountpoint: mountpoint,
		Client:     client,
		Clock:      clock.Fake(driverEpoch),
	})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	t.Cleanup(func() {
		if err := server.Unmount(); err != nil {
			t.Errorf("Unmount: %v", err)
		}
	})

	return mountpoint
}

func TestMountReadInbox(t *testing.T) {
	client := singleMessageClient(true)
	mountpoint := testMount(t, client)

	dirs, err := os.ReadDir(mountpoint)
	if err != nil {
		t.Fatalf("ReadDir(root): %v", err)
	}
	if len(dirs) != 1 {
		t.Fatalf("root has %d entries, want 1", len(dirs))
	}
	if !dirs[0].IsDir() {
		t.Errorf("entry %q is not a directory", dirs[0].Name())
	}
	if dirs[0].Name() != "1-Skatteverket-Besked" {
		t.Errorf("entry name = %q, want %q", dirs[0].Name(), "1-Skatteverket-Besked")
	}

	files, err := os.ReadDir(filepath.Join(mountpoint, dirs[0].Name()))
	if err != nil {
		t.Fatalf("ReadDir(entry): %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("entry has %d files, want 1", len(files))
	}

	path := filepath.Join(mountpoint, dirs[0].Name(), files[0].Name())

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != 5 {
		t.Errorf("Stat size = %d, want 5", info.Size())
	}
	if info.Mode().Perm() != 0o400 {
		t.Errorf("file mode = %v, want r--------", info.Mode().Perm())
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "tjena" {
		t.Errorf("ReadFile = %q, want %q", got, "tjena")
	}
	if client.downloadCalls != 0 {
		t.Errorf("inline body triggered %d downloads, want 0", client.downloadCalls)
	}
}

func TestMountDownloadsOnce(t *testing.T) {
	client := singleMessageClient(false)
	mountpoint := testMount(t, client)

	dirs, err := os.ReadDir(mountpoint)
	if err != nil || len(dirs) != 1 {
		t.Fatalf("ReadDir(root) = %d entries, err %v; want 1", len(dirs), err)
	}
	files, err := os.ReadDir(filepath.Join(mountpoint, dirs[0].Name()))
	if err != nil || len(files) != 1 {
		t.Fatalf("ReadDir(entry) = %d entries, err %v; want 1", len(files), err)
	}
	path := filepath.Join(mountpoint, dirs[0].Name(), files[0].Name())

	for i := 0; i < 2; i++ {
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile #%d: %v", i+1, err)
		}
		if string(got) != "tjena" {
			t.Errorf("ReadFile #%d = %q, want %q", i+1, got, "tjena")
		}
	}
	if client.downloadCalls != 1 {
		t.Errorf("%d downloads for two reads, want 1", client.downloadCalls)
	}
}

func TestMountIsReadOnly(t *testing.T) {
	client := singleMessageClient(true)
	mountpoint := testMount(t, client)

	dirs, err := os.ReadDir(mountpoint)
	if err != nil || len(dirs) != 1 {
		t.Fatalf("ReadDir(root) = %d entries, err %v; want 1", len(dirs), err)
	}
	entryDir := filepath.Join(mountpoint, dirs[0].Name())
	files, err := os.ReadDir(entryDir)
	if err != nil || len(files) != 1 {
		t.Fatalf("ReadDir(entry) = %d entries, err %v; want 1", len(files), err)
	}

	if err := os.WriteFile(filepath.Join(entryDir, files[0].Name()), []byte("nope"), 0o600); err == nil {
		t.Error("overwriting an attachment succeeded, want failure")
	}
	if err := os.WriteFile(filepath.Join(mountpoint, "new-file"), []byte("nope"), 0o600); err == nil {
		t.Error("creating a file succeeded, want failure")
	}
	if err := os.Mkdir(filepath.Join(mountpoint, "new-dir"), 0o700); err == nil {
		t.Error("creating a directory succeeded, want failure")
	}
	if err := os.Remove(filepath.Join(entryDir, files[0].Name())); err == nil {
		t.Error("removing an attachment succeeded, want failure")
	}
}

func TestMountMissingNameIsENOENT(t *testing.T) {
	client := singleMessageClient(true)
	mountpoint := testMount(t, client)

	if _, err := os.Stat(filepath.Join(mountpoint, "no-such-message")); !os.IsNotExist(err) {
		t.Errorf("Stat(unknown) = %v, want not-exist", err)
	}
}
