package browser

const clearStorageJS = `() => { try { window.localStorage.clear(); window.sessionStorage.clear(); } catch (e) {} }`

const scrollOffsetJS = `() => window.pageYOffset || document.documentElement.scrollTop || 0`

// The *Body snippets expect the node in el. setValueBody also expects value.
// Select options match on value first, then on their visible label.
const setValueBody = `
if (el.tagName.toLowerCase() === 'select') {
	var options = Array.prototype.slice.call(el.options);
	var match = options.filter(function (o) { return o.value === value; })[0] ||
		options.filter(function (o) { return o.text.trim() === value.trim(); })[0];
	if (!match) { throw new Error('option "' + value + '" not found'); }
	el.value = match.value;
} else {
	el.focus();
	el.value = value;
	el.dispatchEvent(new Event('input', { bubbles: true }));
}
el.dispatchEvent(new Event('change', { bubbles: true }));
return true;`

const visibleBody = `
if (!el.isConnected) { return false; }
var style = window.getComputedStyle(el);
var rect = el.getBoundingClientRect();
return style.display !== 'none' && style.visibility !== 'hidden' && rect.width > 0 && rect.height > 0;`

const rectBody = `var r = el.getBoundingClientRect(); return [r.top, r.bottom];`

const attributeBody = `var v = el.getAttribute(name); return v === null ? '' : v;`

const textBody = `return el.innerText || el.textContent || '';`
