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
	"fmt"
	"os"
	"unsafe"
)

const (
	// DefaultExpectedEntries is the capacity hint used when the caller gives none.
	DefaultExpectedEntries = 1024
)

func AssertFunc(b bool) {
	if !b {
		panic("assertion failed")
	}
}

// GrownCapacity doubles cap until it covers need. The result never drops
// below the original capacity hint.
func GrownCapacity(cap int, need int, hint int) int {
	if cap < hint {
		cap = hint
	}
	if cap == 0 {
		cap = 1
	}
	for cap < need {
		cap *= 2
	}
	return cap
}

func ConvertPanicError(v interface{}) error {
	return fmt.Errorf("panic %v", v)
}

type Serialize interface {
	WriteData(buffer []byte, len int) error
	Close() error
}

type Deserialize interface {
	ReadData(buffer []byte, len int) error
	Close() error
}

func UnsafeStringToBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func FileIsValid(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.Mode().IsRegular()
}
