// Package printing turns a composed label batch into printed output.
//
// LabelComposer renders the embedded label template for a batch of
// shipment records. ChromedpTarget loads the resulting document into a
// headless Chrome tab, reports when it is ready and prints it to PDF.
// Printed documents are kept by a DocumentStore: FileSystemStorage here,
// or the S3 store in the storage package.
//
// Basic usage:
//
//	composer, _ := printing.NewLabelComposer(&printing.ComposerConfig{Locale: "fr"})
//	store, _ := printing.NewFileSystemStorage(&printing.FileSystemStorageConfig{BasePath: "/data/labels"})
//	target, _ := printing.NewChromedpTarget(&printing.ChromedpConfig{NoSandbox: true}, store)
//	defer target.Close()
//
//	doc, err := composer.Compose(records, codes)
//	ready, err := target.Load(ctx, doc)
//	if err := <-ready; err == nil {
//	    err = target.Print(ctx)
//	}
package printing
