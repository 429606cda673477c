package scene

import (
	"errors"
	"fmt"
)

type fakeShaders map[string]uint32

func (f fakeShaders) Lookup(name string) (ShaderHandle, error) {
	id, ok := f[name]
	if !ok {
		return ShaderHandle{}, fmt.Errorf("%w: %q", ErrUnknownShader, name)
	}
	return ShaderHandle{Name: name, ID: id}, nil
}

func defaultShaders() fakeShaders {
	return fakeShaders{"generic": 1, "light": 2}
}

type fakeTextures struct {
	fail  map[string]bool
	loads []string
}

func (f *fakeTextures) Load(path string) (Texture, error) {
	f.loads = append(f.loads, path)
	if f.fail[path] {
		return Texture{}, errors.New("decode failed")
	}
	return Texture{Path: path, ID: uint32(len(f.loads)), Width: 64, Height: 64}, nil
}

type lightWrite struct {
	offset int
	data   []byte
}

type fakeBackend struct {
	calls    []DrawCall
	writes   []lightWrite
	binds    int
	failTags map[string]bool
	ops      []string
}

func (f *fakeBackend) Draw(call DrawCall) error {
	f.ops = append(f.ops, "draw")
	f.calls = append(f.calls, call)
	if f.failTags[call.Texture.Path] {
		return errors.New("draw failed")
	}
	return nil
}

func (f *fakeBackend) WriteLights(offset int, data []byte) error {
	f.ops = append(f.ops, "write")
	f.writes = append(f.writes, lightWrite{offset: offset, data: append([]byte(nil), data...)})
	return nil
}

func (f *fakeBackend) BindLights() error {
	f.ops = append(f.ops, "bind")
	f.binds++
	return nil
}

func (f *fakeBackend) record(i int) LightRecord {
	last := f.writes[len(f.writes)-1].data
	off := LightRecordOffset(i)
	return UnmarshalLightRecord(last[off : off+LightRecordSize])
}
