// Package markup converts documents to and from their persisted forms: the
// internal markup contract used for storage, plain text, and imported
// markdown files.
//
// The markup contract is deliberately narrow. A document serializes to a
// sequence of block elements, one of <p>, <h1>, <h2>, or <h3>, whose content
// is escaped text interleaved with <br> for inline breaks. Hydrate accepts
// exactly that grammar and nothing else; it is not an HTML parser.
package markup
