// Package container manages packaged (.mscz) scores.
//
// Open extracts every ZIP member into a scratch directory owned by the
// Container and classifies members into roles (primary document, style file,
// thumbnail, audio and view settings) from the META-INF/container.xml manifest
// and member names. Members that match no role are kept untouched.
//
// Save re-zips the current contents of the scratch directory in sorted order,
// so a file rewritten in place (a new style file, say) is picked up and
// repeated saves of unmodified content produce identical archives. Close
// removes the scratch directory; callers defer it right after Open.
package container
