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

package util

import (
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func runSerial(
	t *testing.T,
	name string,
	run func(t *testing.T, fname string) error) error {
	tempFile, err := os.CreateTemp("", name)
	if err != nil {
		return err
	}
	defer func(name string) {
		_ = os.Remove(name)
	}(tempFile.Name())
	fname := tempFile.Name()
	_ = tempFile.Close()
	if run != nil {
		return run(t, fname)
	}
	return nil
}

func Test_serialize(t *testing.T) {
	serial := NewBufferSerialize(nil)

	//write
	err := Write[bool](true, serial)
	assert.NoError(t, err)
	err = Write[uint64](math.MaxUint64/2, serial)
	assert.NoError(t, err)
	err = Write[float64](math.MaxFloat64, serial)
	assert.NoError(t, err)
	err = WriteString("0123456789", serial)
	assert.NoError(t, err)
	err = WriteBytes([]byte{0xDE, 0xAD}, serial)
	assert.NoError(t, err)
	err = WriteBytes(nil, serial)
	assert.NoError(t, err)

	//read
	var b bool
	err = Read[bool](&b, serial)
	assert.NoError(t, err)
	assert.True(t, b)

	var u uint64
	err = Read[uint64](&u, serial)
	assert.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64/2), u)

	var f float64
	err = Read[float64](&f, serial)
	assert.NoError(t, err)
	assert.Equal(t, math.MaxFloat64, f)

	s, err := ReadString(serial)
	assert.NoError(t, err)
	assert.Equal(t, "0123456789", s)

	data, err := ReadBytes(serial)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD}, data)

	data, err = ReadBytes(serial)
	assert.NoError(t, err)
	assert.Empty(t, data)
}

func Test_fileSerialize(t *testing.T) {
	err := runSerial(t, "fileSerialize", func(t *testing.T, fname string) error {
		serial, err := NewFileSerialize(fname)
		assert.NoError(t, err)
		err = Write[int64](-42, serial)
		assert.NoError(t, err)
		err = WriteString("frame", serial)
		assert.NoError(t, err)
		err = serial.Close()
		assert.NoError(t, err)

		deserial, err := NewFileDeserialize(fname)
		assert.NoError(t, err)
		defer func() {
			_ = deserial.Close()
		}()
		var v int64
		err = Read[int64](&v, deserial)
		assert.NoError(t, err)
		assert.Equal(t, int64(-42), v)
		s, err := ReadString(deserial)
		assert.NoError(t, err)
		assert.Equal(t, "frame", s)
		return nil
	})
	assert.NoError(t, err)
}

func Test_checksum(t *testing.T) {
	payload := []byte("columnar page payload")
	sum := Checksum(payload)
	assert.Equal(t, sum, Checksum(payload))

	tampered := append([]byte(nil), payload...)
	tampered[0] ^= 1
	assert.NotEqual(t, sum, Checksum(tampered))

	assert.NotEqual(t, HashSlice([]byte("apple")), HashSlice([]byte("applf")))

	// exercise the 8-byte block loop too, not just the tail
	long := []byte("a value wider than one machine word")
	assert.Equal(t, HashSlice(long), HashSlice(long))
	assert.NotEqual(t, HashSlice(long), HashSlice(long[1:]))
}
