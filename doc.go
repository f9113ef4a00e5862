// Package ibcgt computes UK capital-gains-tax disposals from a broker's
// trade history by applying the HMRC share-matching rules.
//
// The engine consumes a chronologically ordered ledger of buy and sell
// trades per instrument and partitions it into disposal events. Each
// disposal trade is matched, in a fixed priority order, against:
//   - acquisitions of the same security on the same calendar day,
//   - acquisitions within the following 30 days ("bed and breakfast"),
//   - the section 104 pool of all earlier unmatched acquisitions,
//     collapsed into a single averaged holding.
//
// Quantities are split proportionally: when only part of a trade
// participates in a match, a scaled fragment is produced and the
// remainder stays in the working ledger for later matches. All
// arithmetic uses exact decimals, so the fragments of a trade always sum
// back to the original amounts.
//
// The resulting Disposal values expose proceeds, allowable costs and the
// gain or loss in GBP, and feed the tax-year report and the markdown
// renderer of the `ibcgt` command-line tool.
package ibcgt
