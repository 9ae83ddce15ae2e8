package steps

import "fmt"

// PageReadyJS holds once the document has loaded and the site's pending
// JavaScript queue is empty.
const PageReadyJS = `(typeof M === 'undefined' || !M.util || !M.util.pending_js || M.util.pending_js.length === 0) && document.readyState === 'complete'`

// expandFieldsetsJS opens every collapsed form section.
const expandFieldsetsJS = `document.querySelectorAll('fieldset.collapsed').forEach(function (f) {
	f.classList.remove('collapsed');
	var toggle = f.querySelector('.ftoggler a, legend a');
	if (toggle) { toggle.setAttribute('aria-expanded', 'true'); }
});`

func hashScript(section int) string {
	return fmt.Sprintf("location.hash = \"section-%d\";", section)
}
