// Copyright 2023-2024 GuinsooLab
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serde

import (
	"errors"
	"fmt"

	"github.com/GuinsooLab/witdb-sub009/pkg/block"
	"github.com/GuinsooLab/witdb-sub009/pkg/common"
	"github.com/GuinsooLab/witdb-sub009/pkg/util"
)

// ErrUnknownEncoding marks an encoding name with no registered codec.
// There is no schema negotiation: both sides of an exchange must carry
// the same registry, so hitting this on read is fatal for the stream.
var ErrUnknownEncoding = errors.New("unknown block encoding")

// BlockEncoding is a stateless codec for one block kind. Codecs recurse
// into child blocks through the registry so nesting composes by name.
type BlockEncoding interface {
	Name() string
	WriteBlock(r *Registry, serial util.Serialize, b block.Block) error
	ReadBlock(r *Registry, deserial util.Deserialize) (block.Block, error)
}

type Registry struct {
	encodings map[string]BlockEncoding
}

// NewRegistry builds a registry with every standard block encoding
// installed.
func NewRegistry() *Registry {
	r := &Registry{encodings: make(map[string]BlockEncoding)}
	r.Register(fixedEncoding[uint8]{name: block.EncByteArray})
	r.Register(fixedEncoding[int16]{name: block.EncShortArray})
	r.Register(fixedEncoding[int32]{name: block.EncIntArray})
	r.Register(fixedEncoding[int64]{name: block.EncLongArray})
	r.Register(fixedEncoding[common.Hugeint]{name: block.EncInt128})
	r.Register(varWidthEncoding{})
	r.Register(dictionaryEncoding{})
	r.Register(rleEncoding{})
	r.Register(arrayEncoding{})
	r.Register(mapEncoding{})
	r.Register(rowEncoding{})
	return r
}

func (r *Registry) Register(enc BlockEncoding) {
	r.encodings[enc.Name()] = enc
}

func (r *Registry) Get(name string) (BlockEncoding, error) {
	enc, ok := r.encodings[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// WriteBlock writes the encoding name then the block payload. Lazy
// blocks are materialized first and travel as their loaded form.
func (r *Registry) WriteBlock(serial util.Serialize, b block.Block) error {
	b = b.Loaded()
	enc, err := r.Get(b.EncodingName())
	if err != nil {
		return err
	}
	err = util.WriteString(enc.Name(), serial)
	if err != nil {
		return err
	}
	return enc.WriteBlock(r, serial, b)
}

func (r *Registry) ReadBlock(deserial util.Deserialize) (block.Block, error) {
	name, err := util.ReadString(deserial)
	if err != nil {
		return nil, err
	}
	enc, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return enc.ReadBlock(r, deserial)
}
