// Package serialization stores model snapshots in the .snp file format.
//
// A snapshot is a JSON document describing one trained model. The file wraps
// it in a fixed binary header so corruption is detected before decoding:
//
//	Format Structure:
//	  [0x00-0x03: Magic "SYNP"]
//	  [0x04-0x07: Version (uint32 LE)]
//	  [0x08-0x0F: Reserved]
//	  [0x10-0x17: Payload size (uint64 LE)]
//	  [0x18-0x1F: Creation time, Unix seconds (int64 LE)]
//	  [0x20-0x3F: SHA-256 checksum of the payload]
//	  [0x40-...:  Payload: JSON snapshot]
//
// Every snapshot carries a top-level "type" field ("NeuralNetwork" or
// "LSTM") so a reader can dispatch before decoding the rest.
//
// Example usage:
//
//	// Save
//	snap, err := net.Snapshot()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := serialization.WriteFile("model.snp", snap); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Load
//	f, err := serialization.ReadFile("model.snp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	typ, err := f.Type()
package serialization
