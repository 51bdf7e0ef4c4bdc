// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hts221 controls an ST HTS221 relative humidity and temperature
// sensor over I²C.
//
// The package exposes the chip register by register instead of imposing a
// sampling policy. Each register (or register group the chip reads in one
// auto-incremented transfer) has a snapshot type: constructing it performs
// one blocking read, accessors work on the in-memory copy, and the writable
// registers commit the whole byte back through Modify. Output and
// calibration values are the chip's raw counts; mapping them to %RH and °C
// via the factory calibration points is left to the caller.
//
// A Dev performs one bus transaction per call and holds no other state. It
// is not safe for concurrent use; callers that share a Dev across
// goroutines must serialize access themselves.
//
// # Datasheet
//
// https://www.st.com/resource/en/datasheet/hts221.pdf
package hts221
