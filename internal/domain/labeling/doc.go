// Package labeling contains the shipment label bounded context.
// It models shipment records, the scannable codes generated for them,
// the composed label document and the transient job that tracks one
// batch print from code generation to the print trigger.
package labeling
