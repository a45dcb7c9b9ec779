// Package checkout drives hosted-checkout payment flows: it presents the
// provider's checkout UI through the Opener abstraction, receives the
// one-time payment token the UI issues, and hands the token to the
// billing engine, which makes the actual subscription decision.
//
// Each Pay call creates its own Session, so concurrent or repeated
// checkout attempts are safe; there is no shared pending-checkout state.
// Display options can be supplied per call or registered once per plan
// in a Catalog (optionally loaded from YAML).
package checkout
