// Package ir provides the intermediate representation shared by the
// scheduling passes of hdlorder.
//
// This package contains the netlist (signals and logic blocks), sensitivity
// items and trees, and the canonical encoding used to give trigger sets a
// content-addressed identity. All other internal packages import ir; ir
// imports nothing internal.
//
// Key design constraints:
//   - Trigger-set identity is structural: SenTreeKey ignores item order,
//     duplicates and the Multi flag
//   - SenTreeKey hashes signal names byte for byte, without normalization
//   - Canonical encoding is RFC 8785 JSON with NFC-normalized strings
//   - Signal ids are small integers, zero is never assigned
package ir
