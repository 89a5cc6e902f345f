// Package preview serves rendered Markdown documents over HTTP.
//
// Routes:
//   - GET  /healthz            liveness probe
//   - GET  /                   index of the documents under the content root
//   - GET  /docs/*             page for one document, maps mounted
//   - GET  /api/geocode?q=     resolve an address to a point
//   - POST /api/render         render the Markdown request body into a page
//
// Host applications can mount Routes() on their own router.
package preview
