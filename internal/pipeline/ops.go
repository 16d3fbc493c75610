package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"sdkgen/internal/sdkerr"
)

func (e *Executor) check(globs []string) error {
	for _, g := range globs {
		matches, err := filepath.Glob(e.Path(g))
		if err != nil {
			return sdkerr.Wrap(sdkerr.KindSyntax, err, "bad pattern '%s'", g)
		}
		if len(matches) == 0 {
			return sdkerr.New(sdkerr.KindNotFound, "'%s' not found", g)
		}
	}
	return nil
}

// single returns the only entry matching pattern.
func (e *Executor) single(pattern string) (string, error) {
	matches, err := filepath.Glob(e.Path(pattern))
	if err != nil {
		return "", sdkerr.Wrap(sdkerr.KindSyntax, err, "bad pattern '%s'", pattern)
	}
	if len(matches) != 1 {
		return "", sdkerr.New(sdkerr.KindStaging, "%d match(es) for '%s', expected 1", len(matches), pattern)
	}
	return matches[0], nil
}

func (e *Executor) rename(pattern, to string) error {
	src, err := e.single(pattern)
	if err != nil {
		return err
	}
	dst := e.Path(to)
	if _, err := os.Lstat(dst); err == nil {
		return sdkerr.New(sdkerr.KindStaging, "cannot rename '%s': '%s' already exists", pattern, to)
	}
	if err := os.Rename(src, dst); err != nil {
		return sdkerr.Wrap(sdkerr.KindStaging, err, "rename '%s' to '%s'", pattern, to)
	}
	return nil
}

func (e *Executor) remove(name string) error {
	path := e.Path(name)
	if _, err := os.Lstat(path); err != nil {
		return sdkerr.Wrap(sdkerr.KindNotFound, err, "cannot delete '%s'", name)
	}
	if err := os.RemoveAll(path); err != nil {
		return sdkerr.Wrap(sdkerr.KindStaging, err, "delete '%s'", name)
	}
	return nil
}

// move relocates from/name into folder to, keeping its base name.
func (e *Executor) move(name, from, to string) error {
	src := e.Path(filepath.Join(from, name))
	if _, err := os.Lstat(src); err != nil {
		return sdkerr.Wrap(sdkerr.KindNotFound, err, "cannot move '%s'", filepath.Join(from, name))
	}
	dir := e.Path(to)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return sdkerr.Wrap(sdkerr.KindStaging, err, "create '%s'", to)
	}
	dst := filepath.Join(dir, filepath.Base(name))
	if _, err := os.Lstat(dst); err == nil {
		return sdkerr.New(sdkerr.KindStaging, "cannot move '%s': '%s' already exists", name, filepath.Join(to, filepath.Base(name)))
	}
	if err := os.Rename(src, dst); err != nil {
		return sdkerr.Wrap(sdkerr.KindStaging, err, "move '%s' to '%s'", name, to)
	}
	return nil
}

func (e *Executor) unzip(name, to string) error {
	archive := e.Path(name)
	r, err := zip.OpenReader(archive)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return sdkerr.Wrap(sdkerr.KindNotFound, err, "cannot unzip '%s'", name)
		}
		return sdkerr.Wrap(sdkerr.KindStaging, err, "open '%s'", name)
	}
	defer r.Close()

	root := e.Path(to)
	for _, f := range r.File {
		if err := extract(root, f); err != nil {
			return sdkerr.Wrap(sdkerr.KindStaging, err, "unzip '%s'", name)
		}
	}
	return nil
}

func extract(root string, f *zip.File) error {
	dst := filepath.Join(root, filepath.FromSlash(f.Name))
	if rel, err := filepath.Rel(root, dst); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("entry '%s' escapes the destination", f.Name)
	}
	if f.FileInfo().IsDir() {
		return os.MkdirAll(dst, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := f.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// zip archives folder name as name.zip, with entries rooted at the folder's
// base name.
func (e *Executor) zip(name string) error {
	dir := e.Path(name)
	info, err := os.Stat(dir)
	if err != nil {
		return sdkerr.Wrap(sdkerr.KindNotFound, err, "cannot zip '%s'", name)
	}
	if !info.IsDir() {
		return sdkerr.New(sdkerr.KindWrongKind, "cannot zip '%s': not a folder", name)
	}

	f, err := os.Create(dir + ".zip")
	if err != nil {
		return sdkerr.Wrap(sdkerr.KindStaging, err, "create '%s.zip'", name)
	}
	zw := zip.NewWriter(f)
	parent := filepath.Dir(dir)
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(parent, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			_, err := zw.Create(rel + "/")
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := zip.FileInfoHeader(fi)
		if err != nil {
			return err
		}
		hdr.Name = rel
		hdr.Method = zip.Deflate
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		_, err = io.Copy(w, in)
		return err
	})
	closeErr := zw.Close()
	if err := f.Close(); closeErr == nil {
		closeErr = err
	}
	if walkErr != nil {
		return sdkerr.Wrap(sdkerr.KindStaging, walkErr, "zip '%s'", name)
	}
	if closeErr != nil {
		return sdkerr.Wrap(sdkerr.KindStaging, closeErr, "zip '%s'", name)
	}
	return nil
}

// patch rewrites a file in place, keeping its permissions.
func (e *Executor) patch(name string, fn func([]byte) []byte) error {
	path := e.Path(name)
	info, err := os.Stat(path)
	if err != nil {
		return sdkerr.Wrap(sdkerr.KindNotFound, err, "cannot patch '%s'", name)
	}
	if info.IsDir() {
		return sdkerr.New(sdkerr.KindWrongKind, "cannot patch '%s': is a folder", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return sdkerr.Wrap(sdkerr.KindNotFound, err, "read '%s'", name)
	}
	if err := os.WriteFile(path, fn(data), info.Mode().Perm()); err != nil {
		return sdkerr.Wrap(sdkerr.KindStaging, err, "write '%s'", name)
	}
	return nil
}

func (e *Executor) replace(name, old, repl string) error {
	return e.patch(name, func(b []byte) []byte {
		n := bytes.Count(b, []byte(old))
		e.Logger.Debug().Str("file", name).Str("old", old).Int("count", n).Msg("replaced")
		return bytes.ReplaceAll(b, []byte(old), []byte(repl))
	})
}

func (e *Executor) deleteLines(name, token string) error {
	return e.patch(name, func(b []byte) []byte {
		lines := bytes.SplitAfter(b, []byte("\n"))
		out := make([]byte, 0, len(b))
		dropped := 0
		for _, line := range lines {
			if bytes.Contains(line, []byte(token)) {
				dropped++
				continue
			}
			out = append(out, line...)
		}
		e.Logger.Debug().Str("file", name).Str("token", token).Int("lines", dropped).Msg("deleted lines")
		return out
	})
}

func (e *Executor) run(ctx context.Context, s Step) error {
	var cmd Command
	if len(s.Command) > 0 {
		cmd = Command{Dir: e.Dir, Name: s.Command[0], Args: s.Command[1:]}
	} else {
		cmd = ShellCommand(e.Dir, s.Shell)
	}

	out := e.Output
	if out == nil {
		out = io.Discard
	}
	if s.Log != "" {
		f, err := os.OpenFile(e.Path(s.Log), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return sdkerr.Wrap(sdkerr.KindCommandFailed, err, "open log '%s'", s.Log)
		}
		defer f.Close()
		out = f
	}

	e.Logger.Info().Str("command", cmd.String()).Str("log", s.Log).Msg("running")
	if err := e.Runner.Run(ctx, cmd, out); err != nil {
		msg := fmt.Sprintf("'%s' failed", cmd.String())
		if s.Log != "" {
			msg += fmt.Sprintf(", see '%s'", s.Log)
		}
		return sdkerr.Wrap(sdkerr.KindCommandFailed, err, "%s", msg)
	}
	return nil
}
