// Package manifest discovers layer manifests under a project root and decodes
// them into layer.Config values.
//
// A manifest is a file named layer.hcl, layer.yaml or layer.yml. HCL
// manifests declare one or more layer blocks:
//
//	layer "auth" {
//	  type         = shared
//	  version      = "1.0.0"
//	  dependencies = [core]
//	  exports      = ["AuthService"]
//
//	  module "session" {
//	    imports = ["@core/utils"]
//	  }
//	}
//
// Layer types may be written as bare identifiers or as strings. YAML
// manifests carry the same fields, one layer per document. The directory of
// the manifest becomes the layer's Path.
package manifest
