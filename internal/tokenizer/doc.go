// Package tokenizer splits text into integer token IDs for sequence models.
//
// Two implementations are provided:
//   - Char: one token per Unicode code point, no external data
//   - BPE: tiktoken byte-pair encodings, chosen by encoding or model name
//
// Token IDs are sparse for both; data.Vocabulary maps the IDs that occur in a
// corpus onto a dense index space suitable for one-hot network inputs.
//
// Example usage:
//
//	tok, err := tokenizer.NewBPE("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tokens, err := tok.Encode("Hello, world!")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	text, err := tok.Decode(tokens)
package tokenizer
