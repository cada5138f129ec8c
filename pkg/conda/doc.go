/*
Package conda reconciles environment spec files against the environments a
conda installation already has.

The flow for one spec file is:

  - LoadSpec reads the declared identity (name and/or prefix) and keeps the
    rest of the document untouched.
  - ReadRegistry asks the environment manager which environments exist.
  - Match compares the declared identity with that snapshot.
  - Resolve turns the match into an authoritative ResolutionOutcome,
    asking a Chooser when more than one answer is reasonable.
  - Provision runs "env create" or "env update" with the resolved identity.
  - WriteSpec persists the resolved identity back into the spec file,
    but only after provisioning succeeded.

Installer strings these together.
*/
package conda
